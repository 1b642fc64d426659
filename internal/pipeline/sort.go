package pipeline

import (
	"cmp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec is the user-controlled ordering. The zero value leaves records in
// their filtered order.
type SortSpec struct {
	Column    record.Column
	Direction Direction
}

// Toggle returns the ordering after the user selects column: the same column
// flips direction, a new column starts ascending.
func (s SortSpec) Toggle(column record.Column) SortSpec {
	if s.Column == column {
		if s.Direction == Desc {
			return SortSpec{Column: column, Direction: Asc}
		}
		return SortSpec{Column: column, Direction: Desc}
	}
	return SortSpec{Column: column, Direction: Asc}
}

// Active reports whether s orders anything. An unknown column orders nothing.
func (s SortSpec) Active() bool { return s.Column.Valid() }

func (s SortSpec) String() string {
	if !s.Active() {
		return "unsorted"
	}
	return string(s.Column) + ":" + string(s.Direction)
}

// Sort returns a stably ordered copy of records. Numeric columns compare by
// value; text columns compare case-insensitively in collation order. Ties keep
// their input order.
func Sort(records []record.DerivedRecord, s SortSpec) []record.DerivedRecord {
	out := cloneRecords(records)
	if !s.Active() {
		return out
	}

	compare := comparator(s.Column)
	sign := 1
	if s.Direction == Desc {
		sign = -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*compare(out[i], out[j]) < 0
	})
	return out
}

func comparator(c record.Column) func(a, b record.DerivedRecord) int {
	if c.Numeric() {
		return func(a, b record.DerivedRecord) int {
			av, _ := a.Number(c)
			bv, _ := b.Number(c)
			return cmp.Compare(av, bv)
		}
	}
	// A Collator is not safe for concurrent use.
	col := collate.New(language.Und)
	return func(a, b record.DerivedRecord) int {
		return col.CompareString(strings.ToLower(a.Text(c)), strings.ToLower(b.Text(c)))
	}
}

func cloneRecords(in []record.DerivedRecord) []record.DerivedRecord {
	out := make([]record.DerivedRecord, len(in))
	copy(out, in)
	return out
}
