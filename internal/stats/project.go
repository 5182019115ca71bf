// Package stats turns the raw prize distribution into dashboard rows.
package stats

import (
	"cmp"
	"slices"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// Project returns one entry per label sorted by count descending, then label
// ascending. Percentages are rounded half-up and are all zero when the total
// is zero. Negative counts are treated as zero.
func Project(dist domain.PrizeDistribution) []domain.StatEntry {
	entries := make([]domain.StatEntry, 0, len(dist))
	total := Total(dist)

	for label, count := range dist {
		count = max(count, 0)
		entries = append(entries, domain.StatEntry{
			Label:      label,
			Count:      count,
			Percentage: percentage(count, total),
		})
	}

	slices.SortFunc(entries, func(a, b domain.StatEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return entries
}

// Total sums the non-negative counts of dist.
func Total(dist domain.PrizeDistribution) int64 {
	var total int64
	for _, c := range dist {
		total += max(c, 0)
	}
	return total
}

// round(100*count/total) computed without floats.
func percentage(count, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((200*count + total) / (2 * total))
}
