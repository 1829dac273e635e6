// Package analytics is the habit completion engine: pure calendar arithmetic
// over immutable habit snapshots. Nothing here performs I/O or reads the
// clock; "today" is always an explicit parameter so every computation is
// deterministic under test.
package analytics

import (
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

// Classify derives the status of one (habit, date) pair. Precedence order
// matters: a completed date on a non-target day still reads as completed, and
// a future target day is future, not missed.
func Classify(h *domain.Habit, date, today time.Time) domain.DayStatus {
	day := domain.DateOnly(date)

	if day.After(domain.DateOnly(today)) {
		return domain.StatusFuture
	}
	if h.IsCompletedOn(day) {
		return domain.StatusCompleted
	}
	if h.IsTargetDay(day) {
		return domain.StatusMissed
	}
	return domain.StatusInactive
}

// IsTrackable reports whether a toggle on the date would be permitted and
// counted: the date must lie in [StartDate, today] and fall on a target day.
// Toggling an off-schedule day inside the window is still allowed (the store
// accepts it), it just never counts toward scheduled-day math.
func IsTrackable(h *domain.Habit, date, today time.Time) bool {
	day := domain.DateOnly(date)
	return !day.Before(h.StartDate) && !day.After(domain.DateOnly(today)) && h.IsTargetDay(day)
}
