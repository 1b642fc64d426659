package pipeline

import "github.com/keilerkonzept/covid-dashboard-tui/internal/record"

// View is one pipeline run: the records the views render, plus the state
// that produced them.
type View struct {
	Criteria FilterCriteria
	Sort     SortSpec
	Records  []record.DerivedRecord
}

// Apply filters, derives and sorts records. Sorting runs last so derived
// rates are sortable.
func Apply(records []record.Record, c FilterCriteria, s SortSpec) View {
	return View{
		Criteria: c,
		Sort:     s,
		Records:  Sort(DeriveAll(Filter(records, c)), s),
	}
}

// Countries returns the distinct country names in first-seen order.
func Countries(records []record.Record) []string {
	seen := make(map[string]struct{}, 256)
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		out = append(out, r.Country)
	}
	return out
}

// LatestDate returns the report date of the first dated record, the way the
// feed orders its newest entries first. ok is false if no record is dated.
func LatestDate(records []record.Record) (date string, ok bool) {
	for _, r := range records {
		if r.HasReportDate() {
			return r.ReportDate, true
		}
	}
	return "", false
}
