package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("range end cannot be before range start")
)

// DayStatus classifies a single calendar day of a habit.
type DayStatus string

const (
	StatusFuture    DayStatus = "future"
	StatusCompleted DayStatus = "completed"
	StatusMissed    DayStatus = "missed"
	StatusInactive  DayStatus = "inactive"
)

// Streaks carries the derived consecutive-completion counters. Current is the
// run ending at the most recent scheduled day; Highest is the best run over
// the habit's whole history.
type Streaks struct {
	Current int `json:"current"`
	Highest int `json:"highest"`
}

// ComparisonEntry is one bar of the habit performance ranking.
type ComparisonEntry struct {
	Name       string `json:"name"`
	Completion int    `json:"completion"`
}

// Heatmap is a sparse date -> habit id -> completed index. Dates with no
// completions for any habit are absent.
type Heatmap map[string]map[string]bool

// AnalyticsSnapshot is the presentation-ready aggregate over one user's
// habits. It is rebuilt from scratch on every request, never persisted.
type AnalyticsSnapshot struct {
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	TotalHabits int               `json:"total_habits"`
	OverallRate int               `json:"overall_completion_rate"`
	Ranking     []ComparisonEntry `json:"ranking"`
	Heatmap     Heatmap           `json:"heatmap"`
}

// DayCell is one day of a habit's week view: status plus the completion
// instant for time-of-day display, when one exists.
type DayCell struct {
	Date        string     `json:"date"`
	Status      DayStatus  `json:"status"`
	TargetDay   bool       `json:"target_day"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
