package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

const (
	rankingLimit = 10

	maxDisplayNameLen   = 15
	truncatedNameLen    = 12
	noDataSentinelLabel = "No data"
)

// OverallRate averages the completion rates of all valid habits over the same
// window, equally weighted per habit, rounded to the nearest integer. An empty
// or fully malformed collection yields 0.
func OverallRate(habits []*domain.Habit, rangeStart, rangeEnd, today time.Time) (int, error) {
	if domain.DateOnly(rangeEnd).Before(domain.DateOnly(rangeStart)) {
		return 0, domain.ErrInvalidRange
	}

	var sum, count int
	for _, h := range habits {
		if !h.Valid() {
			continue
		}
		rate, err := CompletionRate(h, rangeStart, rangeEnd, today)
		if err != nil {
			return 0, err
		}
		sum += rate
		count++
	}

	if count == 0 {
		return 0, nil
	}
	return clampRate(int(math.Round(float64(sum) / float64(count)))), nil
}

// RankHabits builds the comparison ranking: rates computed over the window,
// sorted descending (ties keep input order), cut to the top 10, long names
// shortened for display. When nothing valid remains the result is a single
// "No data" sentinel, never an empty list, because the chart consumer assumes
// at least one entry.
func RankHabits(habits []*domain.Habit, rangeStart, rangeEnd, today time.Time) ([]domain.ComparisonEntry, error) {
	if domain.DateOnly(rangeEnd).Before(domain.DateOnly(rangeStart)) {
		return nil, domain.ErrInvalidRange
	}

	entries := make([]domain.ComparisonEntry, 0, len(habits))
	for _, h := range habits {
		if !h.Valid() {
			continue
		}
		rate, err := CompletionRate(h, rangeStart, rangeEnd, today)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.ComparisonEntry{
			Name:       displayName(h.Name),
			Completion: rate,
		})
	}

	if len(entries) == 0 {
		return []domain.ComparisonEntry{{Name: noDataSentinelLabel, Completion: 0}}, nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Completion > entries[j].Completion
	})

	if len(entries) > rankingLimit {
		entries = entries[:rankingLimit]
	}
	return entries, nil
}

// BuildHeatmap indexes every completion of every habit by date, regardless of
// period: heatmap[date][habitID] = true. The map is sparse; absent dates mean
// no habit was completed that day. Malformed records and unparseable dates
// are skipped.
func BuildHeatmap(habits []*domain.Habit) domain.Heatmap {
	heatmap := make(domain.Heatmap)

	for _, h := range habits {
		if !h.Valid() || h.ID == "" {
			continue
		}
		for _, date := range h.CompletedDates {
			if _, err := time.Parse(domain.DateLayout, date); err != nil {
				continue
			}
			if heatmap[date] == nil {
				heatmap[date] = make(map[string]bool)
			}
			heatmap[date][h.ID] = true
		}
	}

	return heatmap
}

// displayName shortens over-long habit names for the ranking. Lengths are
// counted in runes so multibyte names are never cut mid-character.
func displayName(name string) string {
	runes := []rune(name)
	if len(runes) > maxDisplayNameLen {
		return string(runes[:truncatedNameLen]) + "..."
	}
	return name
}
