package query

import "sort"

// Summary holds the reduction of a record collection.
type Summary struct {
	Count   int64   `json:"count"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
}

// Summarize reduces a collection to count, sum and average. The empty
// collection yields the zero Summary; average is never NaN.
func Summarize[T any](records []T, amount func(T) float64) Summary {
	s := Summary{Count: int64(len(records))}
	for _, record := range records {
		s.Sum += amount(record)
	}
	if s.Count > 0 {
		s.Average = s.Sum / float64(s.Count)
	}
	return s
}

// BreakdownEntry aggregates records sharing a categorical key.
type BreakdownEntry struct {
	Key   string  `json:"key"`
	Sum   float64 `json:"sum"`
	Count int64   `json:"count"`
}

// BreakdownBy groups a collection by a categorical key. Keys appear in
// order of first occurrence.
func BreakdownBy[T any](records []T, key func(T) string, amount func(T) float64) []BreakdownEntry {
	index := make(map[string]int, len(records))
	entries := make([]BreakdownEntry, 0)
	for _, record := range records {
		k := key(record)
		i, ok := index[k]
		if !ok {
			i = len(entries)
			index[k] = i
			entries = append(entries, BreakdownEntry{Key: k})
		}
		entries[i].Sum += amount(record)
		entries[i].Count++
	}
	return entries
}

// SortBySum reorders breakdown entries by summed amount descending.
// Ties keep first-occurrence order.
func SortBySum(entries []BreakdownEntry) []BreakdownEntry {
	out := make([]BreakdownEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sum > out[j].Sum
	})
	return out
}

// PercentChange computes period-over-period growth. When the previous
// period is zero the change is defined as 0, never NaN or Inf.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
