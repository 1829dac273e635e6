package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/analytics"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/alexmoretti/habitgrid/internal/core/workers"
)

type HabitService struct {
	repo   domain.HabitRepository
	worker *workers.StreakWorker
	now    func() time.Time
}

func NewHabitService(repo domain.HabitRepository, worker *workers.StreakWorker) *HabitService {
	return &HabitService{
		repo:   repo,
		worker: worker,
		now:    time.Now,
	}
}

type CreateHabitInput struct {
	UserID     string
	Name       string
	StartDate  time.Time
	TargetDays []string
}

type UpdateHabitInput struct {
	ID         string
	UserID     string
	Name       string
	StartDate  time.Time
	TargetDays []string
	Version    int
}

// ToggleResult reports the outcome of a completion toggle. Streaks are
// derived fresh from the updated completion set rather than read from the
// cached columns, so callers see consistent values immediately even though
// the memoized copy is refreshed asynchronously.
type ToggleResult struct {
	Habit     *domain.Habit  `json:"habit"`
	Completed bool           `json:"completed"`
	Streaks   domain.Streaks `json:"streaks"`
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name, input.StartDate, input.TargetDays)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	if err := habit.Update(input.Name, input.StartDate, input.TargetDays); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	// A moved start date can shrink or widen the scheduled-day history the
	// cached streaks were computed from.
	s.worker.Enqueue(habit.ID)

	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if habit.UserID != userID {
		return domain.ErrHabitNotFound
	}

	return s.repo.Delete(ctx, id)
}

// ToggleCompletion flips the completion state for one calendar day, persists
// the habit, and schedules the streak cache refresh. Out-of-window dates
// surface domain.ErrInvalidDate without touching storage.
func (s *HabitService) ToggleCompletion(ctx context.Context, habitID, userID string, date time.Time) (*ToggleResult, error) {
	habit, err := s.GetByID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	completed, err := habit.ToggleCompletion(date, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.worker.Enqueue(habit.ID)

	return &ToggleResult{
		Habit:     habit,
		Completed: completed,
		Streaks:   analytics.ComputeStreaks(habit, now, now),
	}, nil
}
