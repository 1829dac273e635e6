package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmoretti/habitgrid/internal/core/analytics"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/alexmoretti/habitgrid/internal/core/services"
)

func TestAnalyticsService_Snapshot(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	t.Run("builds overall rate, ranking and heatmap", func(t *testing.T) {
		repo := new(MockHabitRepo)
		habits := []*domain.Habit{
			mwfFixture(userID, "2024-01-01", "2024-01-03"),
			{
				ID:         "habit-2",
				UserID:     userID,
				Name:       "Read",
				StartDate:  date(2024, 1, 1),
				TargetDays: []string{"Monday"},
				CompletedDates: []string{
					"2024-01-01",
				},
			},
		}
		repo.On("ListByUserID", ctx, userID).Return(habits, nil)

		svc := services.NewAnalyticsService(repo)
		snapshot, err := svc.Snapshot(ctx, userID, analytics.RangeOptions{
			Kind:  analytics.RangeCustom,
			Start: date(2024, 1, 1),
			End:   date(2024, 1, 7),
		}, date(2024, 1, 7))

		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", snapshot.StartDate)
		assert.Equal(t, "2024-01-07", snapshot.EndDate)
		assert.Equal(t, 2, snapshot.TotalHabits)
		// round((67+100)/2) = 84
		assert.Equal(t, 84, snapshot.OverallRate)

		require.Len(t, snapshot.Ranking, 2)
		assert.Equal(t, "Read", snapshot.Ranking[0].Name)
		assert.Equal(t, 100, snapshot.Ranking[0].Completion)

		assert.True(t, snapshot.Heatmap["2024-01-01"]["habit-1"])
		assert.True(t, snapshot.Heatmap["2024-01-01"]["habit-2"])
		assert.True(t, snapshot.Heatmap["2024-01-03"]["habit-1"])
	})

	t.Run("no habits yields zero rate and sentinel ranking", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("ListByUserID", ctx, userID).Return([]*domain.Habit{}, nil)

		svc := services.NewAnalyticsService(repo)
		snapshot, err := svc.Snapshot(ctx, userID, analytics.RangeOptions{}, date(2024, 1, 7))

		require.NoError(t, err)
		assert.Equal(t, 0, snapshot.OverallRate)
		require.Len(t, snapshot.Ranking, 1)
		assert.Equal(t, "No data", snapshot.Ranking[0].Name)
		assert.Empty(t, snapshot.Heatmap)
	})

	t.Run("invalid custom range rejected before any query", func(t *testing.T) {
		repo := new(MockHabitRepo)

		svc := services.NewAnalyticsService(repo)
		_, err := svc.Snapshot(ctx, userID, analytics.RangeOptions{
			Kind:  analytics.RangeCustom,
			Start: date(2024, 2, 1),
			End:   date(2024, 1, 1),
		}, date(2024, 1, 7))

		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		repo.AssertNotCalled(t, "ListByUserID")
	})

	t.Run("repo error propagates", func(t *testing.T) {
		repo := new(MockHabitRepo)
		dbErr := errors.New("db connection lost")
		repo.On("ListByUserID", ctx, userID).Return(nil, dbErr)

		svc := services.NewAnalyticsService(repo)
		_, err := svc.Snapshot(ctx, userID, analytics.RangeOptions{}, date(2024, 1, 7))

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAnalyticsService_WeekView(t *testing.T) {
	ctx := context.Background()

	t.Run("seven classified cells with completion times", func(t *testing.T) {
		repo := new(MockHabitRepo)
		habit := mwfFixture("user-1", "2024-01-01", "2024-01-03")
		completedAt := time.Date(2024, 1, 3, 7, 45, 0, 0, time.UTC)
		habit.CompletionTimestamps = map[string]time.Time{
			"2024-01-03": completedAt,
		}
		repo.On("GetByID", ctx, "habit-1").Return(habit, nil)

		svc := services.NewAnalyticsService(repo)
		cells, err := svc.WeekView(ctx, "habit-1", "user-1", date(2024, 1, 4), time.Monday)

		require.NoError(t, err)
		require.Len(t, cells, 7)

		assert.Equal(t, "2024-01-01", cells[0].Date)
		assert.Equal(t, domain.StatusCompleted, cells[0].Status)
		assert.True(t, cells[0].TargetDay)

		assert.Equal(t, domain.StatusInactive, cells[1].Status) // Tuesday

		assert.Equal(t, domain.StatusCompleted, cells[2].Status)
		require.NotNil(t, cells[2].CompletedAt)
		assert.Equal(t, completedAt, *cells[2].CompletedAt)

		assert.Equal(t, domain.StatusMissed, cells[4].Status) // Friday, skipped
	})

	t.Run("foreign habit reads as not found", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("GetByID", ctx, "habit-1").Return(mwfFixture("someone-else"), nil)

		svc := services.NewAnalyticsService(repo)
		_, err := svc.WeekView(ctx, "habit-1", "user-1", date(2024, 1, 4), time.Monday)

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestAnalyticsService_WeeklyRate(t *testing.T) {
	ctx := context.Background()

	repo := new(MockHabitRepo)
	repo.On("GetByID", ctx, "habit-1").Return(mwfFixture("user-1", "2024-01-01", "2024-01-03"), nil)

	svc := services.NewAnalyticsService(repo)
	rate, err := svc.WeeklyRate(ctx, "habit-1", "user-1", date(2024, 1, 4), time.Monday)

	require.NoError(t, err)
	assert.Equal(t, 67, rate)
}
