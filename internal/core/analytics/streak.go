package analytics

import (
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

// ComputeStreaks derives the current and highest consecutive-completion
// streaks over the habit's scheduled days, always from full history. A
// scheduled day is a calendar date in [StartDate, min(asOf, today)] whose
// weekday is a target day; off-schedule completions do not participate.
//
// The current streak counts backwards from the most recent scheduled day and
// stops at the first one not completed. Days before StartDate do not exist
// for the habit and never break a run.
func ComputeStreaks(h *domain.Habit, asOf, today time.Time) domain.Streaks {
	end := domain.DateOnly(asOf)
	if t := domain.DateOnly(today); end.After(t) {
		end = t
	}

	if !h.Valid() || end.Before(h.StartDate) {
		return domain.Streaks{}
	}

	completed := h.CompletedSet()

	var current int
	for day := end; !day.Before(h.StartDate); day = day.AddDate(0, 0, -1) {
		if !h.IsTargetDay(day) {
			continue
		}
		if !completed[domain.DateKey(day)] {
			break
		}
		current++
	}

	var highest, run int
	for day := h.StartDate; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !h.IsTargetDay(day) {
			continue
		}
		if completed[domain.DateKey(day)] {
			run++
			if run > highest {
				highest = run
			}
		} else {
			run = 0
		}
	}

	return domain.Streaks{Current: current, Highest: highest}
}
