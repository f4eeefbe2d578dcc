// Package filter narrows an in-memory expense list by a single field filter
// plus an optional inclusive date range, and computes totals over the result.
package filter

import (
	"strings"

	"b43/internal/core"
)

// Field selects which expense attribute a value filter applies to.
type Field string

const (
	FieldName     Field = "name"
	FieldCategory Field = "category"
	FieldFloor    Field = "floor"
	FieldDate     Field = "date"
)

// ParseField maps a query-string value to a Field, defaulting to name.
func ParseField(s string) Field {
	switch Field(s) {
	case FieldName, FieldCategory, FieldFloor, FieldDate:
		return Field(s)
	}
	return FieldName
}

// Criteria combines one field filter with an inclusive date range.
// Zero-value criteria match everything.
type Criteria struct {
	Field    Field
	Value    string
	DateFrom string // YYYY-MM-DD, empty means unbounded
	DateTo   string
}

// Apply returns the records matching the criteria, preserving order.
// The input slice is never mutated.
func Apply(records []core.Expense, c Criteria) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether a single record satisfies every sub-condition.
// A record with an empty value for the attribute under test passes that
// sub-condition: only populated fields are filtered on.
func (c Criteria) Matches(e core.Expense) bool {
	if c.Value != "" {
		switch c.Field {
		case FieldName:
			if e.Name != "" && !containsFold(e.Name, c.Value) {
				return false
			}
		case FieldCategory:
			if e.Category != "" && !containsFold(e.Category, c.Value) {
				return false
			}
		case FieldFloor:
			// Floor filtering matches against notes; the floor field itself is
			// not consulted. TODO: confirm with product whether this should
			// target the floor field instead.
			if e.Notes != "" && !containsFold(e.Notes, c.Value) {
				return false
			}
		case FieldDate:
			if e.Date != "" && e.Date != c.Value {
				return false
			}
		}
	}
	// Lexicographic compare is safe: dates are zero-padded ISO strings.
	if c.DateFrom != "" && e.Date != "" && e.Date < c.DateFrom {
		return false
	}
	if c.DateTo != "" && e.Date != "" && e.Date > c.DateTo {
		return false
	}
	return true
}

// Total sums the amounts of the given records.
func Total(records []core.Expense) core.Money {
	var cents int64
	for _, e := range records {
		cents += e.Amount.Cents
	}
	return core.Money{Cents: cents}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
