// Package derive holds the pure calculations views run over fetched lists: search
// filtering, aggregation, pagination and small pieces of selection state. Every
// function returns the same output for the same input.
package derive

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter keeps the elements for which any field contains query, compared after Unicode
// case folding. The query is used as typed, surrounding spaces included. An empty query
// keeps everything. The result is never nil.
func Filter[T any](list []T, query string, fields ...func(T) string) []T {
	out := make([]T, 0, len(list))
	if query == "" {
		return append(out, list...)
	}
	fold := cases.Fold()
	q := fold.String(query)
	for _, x := range list {
		for _, field := range fields {
			if strings.Contains(fold.String(field(x)), q) {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// SumWhere adds val over the elements matching pred. A nil pred matches everything.
func SumWhere[T any](list []T, pred func(T) bool, val func(T) float64) float64 {
	var total float64
	for _, x := range list {
		if pred == nil || pred(x) {
			total += val(x)
		}
	}
	return total
}

func CountWhere[T any](list []T, pred func(T) bool) int {
	n := 0
	for _, x := range list {
		if pred(x) {
			n++
		}
	}
	return n
}
