// Package record holds the normalized observation shape shared by ingestion,
// the transform pipeline and the dashboard views.
package record

import (
	"strings"
	"time"
)

// DateLayout is the canonical form of Record.ReportDate.
const DateLayout = "2006-01-02"

// sourceDateLayout is the day-first form used by the ECDC feed ("14/12/2020").
const sourceDateLayout = "02/01/2006"

// Record is one country/date observation. Records are never mutated after
// ingestion; the pipeline always works on copies.
type Record struct {
	Country     string
	Cases       int64
	Deaths      int64
	CasesTotal  int64
	DeathsTotal int64
	// Population is 0 when the source did not report it.
	Population int64
	// ReportDate is empty when the source did not report it.
	ReportDate string
}

func (r Record) HasPopulation() bool { return r.Population > 0 }
func (r Record) HasReportDate() bool { return r.ReportDate != "" }

// Date returns the parsed report date.
func (r Record) Date() (time.Time, bool) {
	if !r.HasReportDate() {
		return time.Time{}, false
	}
	return ParseDate(r.ReportDate)
}

// DerivedRecord is a Record annotated with per-1000 population rates.
type DerivedRecord struct {
	Record
	CasesPer1k  float64
	DeathsPer1k float64
}

// ParseDate accepts both the canonical ISO form and the day-first form used
// by the source feed.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateLayout, sourceDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate rewrites s into DateLayout, or returns "" if s is not a date.
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format(DateLayout)
}
