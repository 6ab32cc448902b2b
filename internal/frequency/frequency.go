package frequency

import (
	"sort"
	"time"

	"megasena-analyzer/models"
)

// Count tallies how often each number appears across the draws. An empty
// input yields an all-zero table over the full [1,60] domain, never an error.
func Count(draws []models.Draw) models.FrequencyTable {
	table := models.NewFrequencyTable()
	for _, d := range draws {
		for _, n := range d.Numbers {
			table[n]++
		}
	}
	return table
}

// FilterRange keeps draws whose date falls inside [start, end]. Zero-value
// bounds are open on that side.
func FilterRange(draws []models.Draw, start, end time.Time) []models.Draw {
	if start.IsZero() && end.IsZero() {
		return draws
	}
	filtered := make([]models.Draw, 0, len(draws))
	for _, d := range draws {
		if !start.IsZero() && d.Date.Before(start) {
			continue
		}
		if !end.IsZero() && d.Date.After(end) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// FilterLastDays keeps draws from the trailing window of the given number of
// days, measured back from now.
func FilterLastDays(draws []models.Draw, days int, now time.Time) []models.Draw {
	cutoff := now.AddDate(0, 0, -days)
	filtered := make([]models.Draw, 0, len(draws))
	for _, d := range draws {
		if !d.Date.Before(cutoff) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// CountRange counts occurrences within a date range.
func CountRange(draws []models.Draw, start, end time.Time) models.FrequencyTable {
	return Count(FilterRange(draws, start, end))
}

// CountSince counts occurrences from cutoff onward.
func CountSince(draws []models.Draw, cutoff time.Time) models.FrequencyTable {
	return Count(FilterRange(draws, cutoff, time.Time{}))
}

// CountLastDays counts occurrences within a trailing-day window.
func CountLastDays(draws []models.Draw, days int, now time.Time) models.FrequencyTable {
	return Count(FilterLastDays(draws, days, now))
}

// TopK returns the k numbers with the highest counts. Numbers with equal
// counts are ordered by ascending value, so the result is a pure function of
// the table and never depends on map iteration order.
func TopK(table models.FrequencyTable, k int) []int {
	if k <= 0 {
		return nil
	}
	numbers := make([]int, 0, len(table))
	for n := range table {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if table[numbers[i]] != table[numbers[j]] {
			return table[numbers[i]] > table[numbers[j]]
		}
		return numbers[i] < numbers[j]
	})
	if k > len(numbers) {
		k = len(numbers)
	}
	return numbers[:k]
}
