// Package query implements the record collection query engine shared by the
// invoice, expense and payment services: predicate building, stable ordering
// and aggregation over in-memory record slices. Every function is pure; the
// caller owns the collection and the engine never retains or mutates it.
package query

import (
	"strings"
	"time"
)

// Predicate reports whether a record matches an active constraint.
// A nil Predicate means "no constraint" and matches every record.
type Predicate[T any] func(T) bool

// And combines constraints; nil entries are skipped so unconstrained
// fields never exclude a record. With no active constraints the result
// matches everything.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return func(T) bool { return true }
	}
	return func(record T) bool {
		for _, p := range active {
			if !p(record) {
				return false
			}
		}
		return true
	}
}

// TextSearch matches when term appears case-insensitively in any of the
// configured text fields. An empty term means no constraint.
func TextSearch[T any](term string, fields func(T) []string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(record T) bool {
		for _, field := range fields(record) {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	}
}

// AmountBetween constrains a numeric field to [min, max], both bounds
// inclusive. A nil bound leaves that side unbounded.
func AmountBetween[T any](min, max *float64, amount func(T) float64) Predicate[T] {
	if min == nil && max == nil {
		return nil
	}
	return func(record T) bool {
		v := amount(record)
		if min != nil && v < *min {
			return false
		}
		if max != nil && v > *max {
			return false
		}
		return true
	}
}

// DateBetween constrains a date field to [from, to] at calendar-date
// precision: time of day is ignored and both bounds are inclusive.
func DateBetween[T any](from, to *time.Time, date func(T) time.Time) Predicate[T] {
	if from == nil && to == nil {
		return nil
	}
	return func(record T) bool {
		d := DateOnly(date(record))
		if from != nil && d.Before(DateOnly(*from)) {
			return false
		}
		if to != nil && d.After(DateOnly(*to)) {
			return false
		}
		return true
	}
}

// Equals constrains a field to an exact value. A nil want means no
// constraint, which is how "all" filter options compile.
func Equals[T any, V comparable](want *V, get func(T) V) Predicate[T] {
	if want == nil {
		return nil
	}
	return func(record T) bool {
		return get(record) == *want
	}
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether two timestamps fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}
