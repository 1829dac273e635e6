package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *mockRepo) UpdateStreaks(ctx context.Context, id string, current, highest int) error {
	args := m.Called(ctx, id, current, highest)
	return args.Error(0)
}

func fixtureHabit(completions ...string) *domain.Habit {
	return &domain.Habit{
		ID:             "habit-1",
		UserID:         "user-1",
		Name:           "Morning run",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TargetDays:     []string{"Monday", "Wednesday", "Friday"},
		CompletedDates: completions,
	}
}

func TestProcessJob(t *testing.T) {
	ctx := context.Background()
	// Friday of the first week; Mon+Wed+Fri are all completed.
	frozen := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	t.Run("persists recomputed streaks", func(t *testing.T) {
		repo := new(mockRepo)
		habit := fixtureHabit("2024-01-01", "2024-01-03", "2024-01-05")

		repo.On("GetByID", ctx, "habit-1").Return(habit, nil)
		repo.On("UpdateStreaks", ctx, "habit-1", 3, 3).Return(nil)

		w := NewStreakWorker(repo)
		w.now = func() time.Time { return frozen }
		w.processJob(ctx, StreakJob{HabitID: "habit-1"})

		repo.AssertExpectations(t)
	})

	t.Run("skips write when counters are already current", func(t *testing.T) {
		repo := new(mockRepo)
		habit := fixtureHabit("2024-01-01", "2024-01-03", "2024-01-05")
		habit.Streak = 3
		habit.HighestStreak = 3

		repo.On("GetByID", ctx, "habit-1").Return(habit, nil)

		w := NewStreakWorker(repo)
		w.now = func() time.Time { return frozen }
		w.processJob(ctx, StreakJob{HabitID: "habit-1"})

		repo.AssertNotCalled(t, "UpdateStreaks")
	})

	t.Run("fetch failure is swallowed", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", ctx, "habit-1").Return(nil, errors.New("db down"))

		w := NewStreakWorker(repo)
		w.now = func() time.Time { return frozen }
		w.processJob(ctx, StreakJob{HabitID: "habit-1"})

		repo.AssertNotCalled(t, "UpdateStreaks")
	})

	t.Run("stale memoized values are overwritten", func(t *testing.T) {
		repo := new(mockRepo)
		// Wednesday was un-toggled after the counters were last written.
		habit := fixtureHabit("2024-01-01", "2024-01-05")
		habit.Streak = 3
		habit.HighestStreak = 3

		repo.On("GetByID", ctx, "habit-1").Return(habit, nil)
		repo.On("UpdateStreaks", ctx, "habit-1", 1, 1).Return(nil)

		w := NewStreakWorker(repo)
		w.now = func() time.Time { return frozen }
		w.processJob(ctx, StreakJob{HabitID: "habit-1"})

		repo.AssertExpectations(t)
	})
}

func TestEnqueueNeverBlocks(t *testing.T) {
	w := NewStreakWorker(new(mockRepo))

	// Fill the buffer and keep going; the overflow jobs are dropped.
	for i := 0; i < 250; i++ {
		w.Enqueue("habit-1")
	}
	assert.Len(t, w.jobs, 100)
}
