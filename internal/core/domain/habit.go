package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrNoTargetDays       = errors.New("habit needs at least one target day")
	ErrInvalidWeekday     = errors.New("invalid weekday name")
	ErrInvalidStartDate   = errors.New("start date is required")
	ErrInvalidDate        = errors.New("date is outside the trackable window")
)

const (
	// DateLayout is the canonical calendar-day key used for completion sets,
	// timestamps and heatmap indices.
	DateLayout = "2006-01-02"

	MaxNameLen = 100
)

// weekOrder fixes the canonical Monday-first ordering of target days.
var weekOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdayIndex = func() map[string]int {
	m := make(map[string]int, len(weekOrder))
	for i, name := range weekOrder {
		m[name] = i
	}
	return m
}()

type Habit struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"start_date" db:"start_date"`

	// TargetDays holds weekday names ("Monday".."Sunday"), deduplicated and in
	// Monday-first order.
	TargetDays []string `json:"target_days"`

	// CompletedDates is a sorted set of YYYY-MM-DD keys. CompletionTimestamps
	// records the exact instant a date was marked done; entries exist only for
	// dates present in CompletedDates.
	CompletedDates       []string             `json:"completed_dates"`
	CompletionTimestamps map[string]time.Time `json:"completion_timestamps,omitempty"`

	// Streak and HighestStreak are denormalized caches. They are recomputed
	// from the completion set (see analytics.ComputeStreaks) and must never be
	// written by anything else.
	Streak        int `json:"streak" db:"streak"`
	HighestStreak int `json:"highest_streak" db:"highest_streak"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DateOnly truncates an instant to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats an instant as the canonical YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func normalizeTargetDays(days []string) ([]string, error) {
	if len(days) == 0 {
		return nil, ErrNoTargetDays
	}

	seen := make(map[string]bool, len(days))
	var unique []string
	for _, d := range days {
		name := strings.TrimSpace(d)
		if _, ok := weekdayIndex[name]; !ok {
			return nil, ErrInvalidWeekday
		}
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}

	sort.Slice(unique, func(i, j int) bool {
		return weekdayIndex[unique[i]] < weekdayIndex[unique[j]]
	})
	return unique, nil
}

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrHabitNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return "", ErrHabitNameTooLong
	}
	return trimmed, nil
}

func NewHabit(userID, name string, startDate time.Time, targetDays []string) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if startDate.IsZero() {
		return nil, ErrInvalidStartDate
	}

	safeDays, err := normalizeTargetDays(targetDays)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Name:                 cleanName,
		StartDate:            DateOnly(startDate),
		TargetDays:           safeDays,
		CompletedDates:       []string{},
		CompletionTimestamps: make(map[string]time.Time),
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Update changes the habit definition. Completions are untouched; a backdated
// start date simply widens the trackable window.
func (h *Habit) Update(name string, startDate time.Time, targetDays []string) error {
	cleanName, err := validateName(name)
	if err != nil {
		return err
	}

	if startDate.IsZero() {
		return ErrInvalidStartDate
	}

	safeDays, err := normalizeTargetDays(targetDays)
	if err != nil {
		return err
	}

	h.Name = cleanName
	h.StartDate = DateOnly(startDate)
	h.TargetDays = safeDays
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// IsTargetDay reports whether the date's weekday is one of the habit's target
// days.
func (h *Habit) IsTargetDay(date time.Time) bool {
	name := date.UTC().Weekday().String()
	for _, d := range h.TargetDays {
		if d == name {
			return true
		}
	}
	return false
}

// CompletedSet returns the completion dates as a set. Duplicates that slipped
// into storage are collapsed here, so every reader sees set semantics.
func (h *Habit) CompletedSet() map[string]bool {
	set := make(map[string]bool, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		set[d] = true
	}
	return set
}

func (h *Habit) IsCompletedOn(date time.Time) bool {
	key := DateKey(date)
	for _, d := range h.CompletedDates {
		if d == key {
			return true
		}
	}
	return false
}

// CompletionTimeOn returns the recorded completion instant for a date, if any.
func (h *Habit) CompletionTimeOn(date time.Time) (time.Time, bool) {
	ts, ok := h.CompletionTimestamps[DateKey(date)]
	return ts, ok
}

// ToggleCompletion flips the completion state for a calendar day. It is
// idempotent per date: toggling twice restores the prior state, including the
// timestamp map. Dates after now or before StartDate are rejected with
// ErrInvalidDate. Non-target days are accepted; such off-schedule completions
// are recorded but never counted by streak or rate math.
func (h *Habit) ToggleCompletion(date, now time.Time) (completed bool, err error) {
	day := DateOnly(date)
	if day.After(DateOnly(now)) || day.Before(h.StartDate) {
		return false, ErrInvalidDate
	}

	key := DateKey(day)
	set := h.CompletedSet()

	if set[key] {
		delete(set, key)
		delete(h.CompletionTimestamps, key)
		completed = false
	} else {
		set[key] = true
		if h.CompletionTimestamps == nil {
			h.CompletionTimestamps = make(map[string]time.Time)
		}
		h.CompletionTimestamps[key] = now.UTC()
		completed = true
	}

	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	h.CompletedDates = dates

	h.UpdatedAt = now.UTC()
	return completed, nil
}

// Valid reports whether the record is well-formed enough for analytics.
// Malformed habits are filtered out of aggregates instead of failing them.
func (h *Habit) Valid() bool {
	return h != nil && h.Name != "" && len(h.TargetDays) > 0 && !h.StartDate.IsZero()
}
