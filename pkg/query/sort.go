package query

import (
	"sort"
	"strings"
	"time"
)

// Direction orders a sort ascending or descending. Flipping direction
// never changes tie-breaking: equal keys keep their input order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection maps a query-string value onto a Direction, defaulting
// to descending (most pages list newest or largest first).
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Ascending)) {
		return Ascending
	}
	return Descending
}

// Comparator is a three-way ordering over two records.
type Comparator[T any] func(a, b T) int

// ByFloat64 orders records by a numeric key, ascending.
func ByFloat64[T any](key func(T) float64) Comparator[T] {
	return func(a, b T) int {
		av, bv := key(a), key(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
}

// ByTime orders records chronologically.
func ByTime[T any](key func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		av, bv := key(a), key(b)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		default:
			return 0
		}
	}
}

// ByString orders records byte-wise, case-sensitively. Locale-aware
// collation would reorder non-ASCII names, so it is deliberately not used.
func ByString[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(key(a), key(b))
	}
}

// Directed applies a direction to a base comparator by flipping its sign.
func Directed[T any](cmp Comparator[T], dir Direction) Comparator[T] {
	if cmp == nil || dir != Descending {
		return cmp
	}
	return func(a, b T) int {
		return -cmp(a, b)
	}
}

// Apply filters and stable-sorts a collection into a new slice. The input
// is never mutated; a nil predicate keeps every record and a nil
// comparator keeps the filtered records in input order. Applying the same
// arguments twice yields identical output.
func Apply[T any](records []T, pred Predicate[T], cmp Comparator[T]) []T {
	out := make([]T, 0, len(records))
	for _, record := range records {
		if pred == nil || pred(record) {
			out = append(out, record)
		}
	}
	if cmp != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return cmp(out[i], out[j]) < 0
		})
	}
	return out
}
