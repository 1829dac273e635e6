package analytics

import (
	"math"
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

const (
	RangeWeek   = "week"
	RangeMonth  = "month"
	RangeCustom = "custom"
)

// RangeOptions selects the reporting period for rate and aggregate queries.
// Start/End are only read for RangeCustom. WeekStartsOn anchors the week
// window; leave it nil for the Monday default.
type RangeOptions struct {
	Kind         string
	Start        time.Time
	End          time.Time
	WeekStartsOn *time.Weekday
}

func (o RangeOptions) weekStart() time.Weekday {
	if o.WeekStartsOn == nil {
		return time.Monday
	}
	return *o.WeekStartsOn
}

// WeekRange returns the 7-day window containing ref, anchored on weekStartsOn.
func WeekRange(ref time.Time, weekStartsOn time.Weekday) (start, end time.Time) {
	day := domain.DateOnly(ref)
	back := (int(day.Weekday()) - int(weekStartsOn) + 7) % 7
	start = day.AddDate(0, 0, -back)
	return start, start.AddDate(0, 0, 6)
}

// MonthRange returns the calendar month containing ref.
func MonthRange(ref time.Time) (start, end time.Time) {
	day := domain.DateOnly(ref)
	start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// ResolveRange turns RangeOptions into a concrete [start, end] window around
// the reference date. Unknown kinds default to the week window; a custom
// window with end before start is rejected.
func ResolveRange(opts RangeOptions, ref time.Time) (start, end time.Time, err error) {
	switch opts.Kind {
	case RangeMonth:
		start, end = MonthRange(ref)
	case RangeCustom:
		start, end = domain.DateOnly(opts.Start), domain.DateOnly(opts.End)
		if end.Before(start) {
			return time.Time{}, time.Time{}, domain.ErrInvalidRange
		}
	default:
		start, end = WeekRange(ref, opts.weekStart())
	}
	return start, end, nil
}

// CompletionRate computes the integer completion percentage over
// [rangeStart, rangeEnd]. The denominator is the habit's scheduled days in the
// range that are also inside [StartDate, today]; future scheduled days cannot
// be completed yet and are excluded. Zero scheduled days yields 0, never an
// error, so aggregation downstream always sees a number. The result is
// rounded half-up and clamped to [0,100] against malformed completion sets.
func CompletionRate(h *domain.Habit, rangeStart, rangeEnd, today time.Time) (int, error) {
	start := domain.DateOnly(rangeStart)
	end := domain.DateOnly(rangeEnd)
	if end.Before(start) {
		return 0, domain.ErrInvalidRange
	}

	if !h.Valid() {
		return 0, nil
	}

	limit := domain.DateOnly(today)
	completed := h.CompletedSet()

	var scheduled, done int
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Before(h.StartDate) || day.After(limit) || !h.IsTargetDay(day) {
			continue
		}
		scheduled++
		if completed[domain.DateKey(day)] {
			done++
		}
	}

	if scheduled == 0 {
		return 0, nil
	}

	rate := int(math.Round(100 * float64(done) / float64(scheduled)))
	return clampRate(rate), nil
}

// WeeklyRate is the week-window variant of CompletionRate.
func WeeklyRate(h *domain.Habit, ref time.Time, weekStartsOn time.Weekday, today time.Time) int {
	start, end := WeekRange(ref, weekStartsOn)
	rate, _ := CompletionRate(h, start, end, today)
	return rate
}

func clampRate(rate int) int {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}
