package pipeline

import "github.com/keilerkonzept/covid-dashboard-tui/internal/record"

// Derive annotates r with per-1000 rates. A missing or non-positive
// population yields 0, not an unavailable marker.
func Derive(r record.Record) record.DerivedRecord {
	return record.DerivedRecord{
		Record:      r,
		CasesPer1k:  per1k(r, r.Cases),
		DeathsPer1k: per1k(r, r.Deaths),
	}
}

// DeriveAll applies Derive to every record, preserving order.
func DeriveAll(records []record.Record) []record.DerivedRecord {
	out := make([]record.DerivedRecord, len(records))
	for i, r := range records {
		out[i] = Derive(r)
	}
	return out
}

func per1k(r record.Record, n int64) float64 {
	if !r.HasPopulation() {
		return 0
	}
	return float64(n) / float64(r.Population) * 1000
}
