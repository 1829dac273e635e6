package workers

import (
	"context"
	"log"
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/analytics"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, highest int) error
}

type StreakJob struct {
	HabitID string
}

// StreakWorker refreshes the memoized streak counters in the background after
// every completion change. The counters are a pure function of the completion
// set (analytics.ComputeStreaks), so a dropped or repeated job is harmless:
// the next recompute converges to the same values.
type StreakWorker struct {
	repo HabitRepository
	jobs chan StreakJob
	now  func() time.Time
}

func NewStreakWorker(repo HabitRepository) *StreakWorker {
	return &StreakWorker{
		repo: repo,
		jobs: make(chan StreakJob, 100),
		now:  time.Now,
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.repo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker error fetching habit %s: %v", job.HabitID, err)
		return
	}

	today := w.now().UTC()
	streaks := analytics.ComputeStreaks(habit, today, today)

	if habit.Streak == streaks.Current && habit.HighestStreak == streaks.Highest {
		return
	}

	if err := w.repo.UpdateStreaks(ctx, habit.ID, streaks.Current, streaks.Highest); err != nil {
		log.Printf("Worker failed to update streaks for %s: %v", habit.ID, err)
		return
	}
	log.Printf("Streaks updated for %s: current=%d, highest=%d", habit.Name, streaks.Current, streaks.Highest)
}
