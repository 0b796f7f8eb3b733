// Package ranking deduplicates and orders place candidates by popularity.
package ranking

import (
	"sort"

	"road-trip-planner/internal/models"
)

// Dedup drops every item whose name was already seen, keeping the first
func Dedup[T models.Scoreable](items []T) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		name := item.PlaceName()
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, item)
	}
	return out
}

// SortByScore orders items by descending popularity. Ties keep input order.
func SortByScore[T models.Scoreable](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PopularityScore() > items[j].PopularityScore()
	})
}

// MergeRank concatenates the lists in order, removes duplicate names and
// sorts the survivors by score. MergeRank(MergeRank(x)) == MergeRank(x).
func MergeRank[T models.Scoreable](lists ...[]T) []T {
	var total int
	for _, l := range lists {
		total += len(l)
	}

	all := make([]T, 0, total)
	for _, l := range lists {
		all = append(all, l...)
	}

	out := Dedup(all)
	SortByScore(out)
	return out
}

// Best returns the highest-scoring item
func Best[T models.Scoreable](items []T) (T, bool) {
	ranked := MergeRank(items)
	if len(ranked) == 0 {
		var zero T
		return zero, false
	}
	return ranked[0], true
}

// Top returns the n highest-scoring distinct items; n <= 0 keeps all
func Top[T models.Scoreable](items []T, n int) []T {
	ranked := MergeRank(items)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
