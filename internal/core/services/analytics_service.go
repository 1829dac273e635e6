package services

import (
	"context"
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/analytics"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

// AnalyticsService is the read side: it fetches a snapshot of the user's
// habits and hands it to the pure analytics package. It never writes back.
type AnalyticsService struct {
	repo domain.HabitRepository
	now  func() time.Time
}

func NewAnalyticsService(repo domain.HabitRepository) *AnalyticsService {
	return &AnalyticsService{
		repo: repo,
		now:  time.Now,
	}
}

// Snapshot builds the full dashboard aggregate for one user: overall rate,
// comparison ranking and heatmap index, all over the resolved window.
func (s *AnalyticsService) Snapshot(ctx context.Context, userID string, opts analytics.RangeOptions, ref time.Time) (*domain.AnalyticsSnapshot, error) {
	start, end, err := analytics.ResolveRange(opts, ref)
	if err != nil {
		return nil, err
	}

	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()

	overall, err := analytics.OverallRate(habits, start, end, today)
	if err != nil {
		return nil, err
	}

	ranking, err := analytics.RankHabits(habits, start, end, today)
	if err != nil {
		return nil, err
	}

	return &domain.AnalyticsSnapshot{
		StartDate:   domain.DateKey(start),
		EndDate:     domain.DateKey(end),
		TotalHabits: len(habits),
		OverallRate: overall,
		Ranking:     ranking,
		Heatmap:     analytics.BuildHeatmap(habits),
	}, nil
}

// Heatmap returns the completion index over the user's entire history, for
// arbitrary calendar views.
func (s *AnalyticsService) Heatmap(ctx context.Context, userID string) (domain.Heatmap, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.BuildHeatmap(habits), nil
}

// WeekView classifies the seven days of the week containing ref for one
// habit, attaching the completion instant where one was recorded. This is the
// single classification path for every calendar rendering.
func (s *AnalyticsService) WeekView(ctx context.Context, habitID, userID string, ref time.Time, weekStartsOn time.Weekday) ([]domain.DayCell, error) {
	habit, err := s.repo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	today := s.now().UTC()
	start, _ := analytics.WeekRange(ref, weekStartsOn)

	cells := make([]domain.DayCell, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)

		cell := domain.DayCell{
			Date:      domain.DateKey(day),
			Status:    analytics.Classify(habit, day, today),
			TargetDay: habit.IsTargetDay(day),
		}
		if ts, ok := habit.CompletionTimeOn(day); ok {
			t := ts
			cell.CompletedAt = &t
		}
		cells = append(cells, cell)
	}

	return cells, nil
}

// WeeklyRate reports one habit's completion percentage for the week
// containing ref.
func (s *AnalyticsService) WeeklyRate(ctx context.Context, habitID, userID string, ref time.Time, weekStartsOn time.Weekday) (int, error) {
	habit, err := s.repo.GetByID(ctx, habitID)
	if err != nil {
		return 0, err
	}
	if habit.UserID != userID {
		return 0, domain.ErrHabitNotFound
	}

	return analytics.WeeklyRate(habit, ref, weekStartsOn, s.now().UTC()), nil
}
