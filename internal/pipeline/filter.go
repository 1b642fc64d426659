// Package pipeline turns the ingested records into the filtered, annotated and
// ordered view the dashboard renders. Every stage is a pure function: inputs
// are never mutated and nothing is cached between runs.
package pipeline

import (
	"strings"
	"time"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

// Bounds selects how a partially specified date range is interpreted.
type Bounds int

const (
	// BoundsBoth applies the date range only when both ends are set; with one
	// end set every record passes. This matches the table's historical
	// behavior and is the default.
	BoundsBoth Bounds = iota
	// BoundsOpen applies each set end on its own.
	BoundsOpen
)

func (b Bounds) String() string {
	if b == BoundsOpen {
		return "open"
	}
	return "both"
}

// FilterCriteria is the user-controlled filter state.
type FilterCriteria struct {
	// StartDate and EndDate are inclusive. Either may be empty.
	StartDate string
	EndDate   string
	// Country matches case-insensitively anywhere in the country name.
	Country string
	// SelectedCountry, when set, keeps only that exact country.
	SelectedCountry string
	Bounds          Bounds
}

// HasDateRange reports whether any date bound is set.
func (c FilterCriteria) HasDateRange() bool {
	return c.StartDate != "" || c.EndDate != ""
}

// ClearDates returns c without date bounds.
func (c FilterCriteria) ClearDates() FilterCriteria {
	c.StartDate, c.EndDate = "", ""
	return c
}

// Filter returns the records matching c, in input order.
func Filter(records []record.Record, c FilterCriteria) []record.Record {
	match := c.matcher()
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if c.SelectedCountry != "" && r.Country != c.SelectedCountry {
			continue
		}
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (c FilterCriteria) matcher() func(record.Record) bool {
	inRange := c.dateMatcher()
	needle := strings.ToLower(c.Country)
	return func(r record.Record) bool {
		if !inRange(r) {
			return false
		}
		return needle == "" || strings.Contains(strings.ToLower(r.Country), needle)
	}
}

func (c FilterCriteria) dateMatcher() func(record.Record) bool {
	all := func(record.Record) bool { return true }
	none := func(record.Record) bool { return false }

	hasStart, hasEnd := c.StartDate != "", c.EndDate != ""
	switch c.Bounds {
	case BoundsOpen:
		if !hasStart && !hasEnd {
			return all
		}
	default:
		if !hasStart || !hasEnd {
			return all
		}
	}

	var start, end time.Time
	if hasStart {
		t, ok := record.ParseDate(c.StartDate)
		if !ok {
			return none
		}
		start = t
	}
	if hasEnd {
		t, ok := record.ParseDate(c.EndDate)
		if !ok {
			return none
		}
		end = t
	}

	return func(r record.Record) bool {
		d, ok := r.Date()
		if !ok {
			return false
		}
		if hasStart && d.Before(start) {
			return false
		}
		if hasEnd && d.After(end) {
			return false
		}
		return true
	}
}
