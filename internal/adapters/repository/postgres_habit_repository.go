package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var targetDaysJSON, completedJSON, timestampsJSON []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.StartDate,
		&targetDaysJSON, &completedJSON, &timestampsJSON,
		&h.Streak, &h.HighestStreak,
		&h.Version, &h.DeletedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(targetDaysJSON) > 0 {
		if err := json.Unmarshal(targetDaysJSON, &h.TargetDays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal target days: %w", err)
		}
	}
	if len(completedJSON) > 0 {
		if err := json.Unmarshal(completedJSON, &h.CompletedDates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed dates: %w", err)
		}
	}
	if len(timestampsJSON) > 0 {
		if err := json.Unmarshal(timestampsJSON, &h.CompletionTimestamps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completion timestamps: %w", err)
		}
	}

	return &h, nil
}

func marshalSets(h *domain.Habit) (targetDays, completed, timestamps []byte, err error) {
	if targetDays, err = json.Marshal(h.TargetDays); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal target days: %w", err)
	}
	if completed, err = json.Marshal(h.CompletedDates); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal completed dates: %w", err)
	}
	if timestamps, err = json.Marshal(h.CompletionTimestamps); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal completion timestamps: %w", err)
	}
	return targetDays, completed, timestamps, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	targetDays, completed, timestamps, err := marshalSets(h)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, start_date,
            target_days, completed_dates, completion_timestamps,
            streak, highest_streak,
            version, deleted_at, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7,
            $8, $9,
            1, NULL, $10, $11
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.StartDate,
		targetDays, completed, timestamps,
		h.Streak, h.HighestStreak,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

const habitColumns = `
        id, user_id, name, start_date,
        target_days, completed_dates, completion_timestamps,
        streak, highest_streak,
        version, deleted_at, created_at, updated_at`

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	targetDays, completed, timestamps, err := marshalSets(h)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            name=$1, start_date=$2,
            target_days=$3, completed_dates=$4, completion_timestamps=$5,
            updated_at=NOW(), version = version + 1
        WHERE id=$6 AND version=$7 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Name, h.StartDate,
		targetDays, completed, timestamps,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existsQuery := `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`
			var count int
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// UpdateStreaks writes only the memoized streak columns. It deliberately does
// not bump the version: the streaks are derived state and a concurrent habit
// edit must not conflict with a cache refresh.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, highest int) error {
	query := `
        UPDATE habits
        SET streak = $1, highest_streak = $2
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, highest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
