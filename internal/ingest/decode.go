package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

// Skip reasons reported for entries that cannot become a Record.
const (
	SkipMissingCountry = "missing country"
	SkipMissingCounts  = "missing cases or deaths"
	SkipNegativeCounts = "negative cases or deaths"
	SkipNotAnObject    = "entry is not an object"
)

// Skipped describes one source entry that was dropped during mapping.
type Skipped struct {
	Index  int
	Reason string
}

// Report summarizes one ingestion run.
type Report struct {
	Source  string
	Entries int
	Kept    int
	Skipped []Skipped
}

type payload struct {
	Records json.RawMessage `json:"records"`
}

type rawRecord struct {
	Country    flexString `json:"countriesAndTerritories"`
	Cases      flexInt    `json:"cases"`
	Deaths     flexInt    `json:"deaths"`
	Population flexInt    `json:"popData2019"`
	DateRep    flexString `json:"dateRep"`
}

// Decode reads one source document from r and maps its entries to Records.
// source names r in errors and in the returned Report.
func Decode(r io.Reader, source string) ([]record.Record, Report, error) {
	report := Report{Source: source}

	var doc payload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// valid JSON, but the top level is not an object
			return nil, report, newFetchError("validate", source, ErrMalformedResponse, err)
		}
		return nil, report, newFetchError("decode", source, ErrParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after the document")
		}
		return nil, report, newFetchError("decode", source, ErrParse, err)
	}

	raw := bytes.TrimSpace(doc.Records)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, report, newFetchError("validate", source, ErrMalformedResponse,
			errors.New(`"records" is missing or not a list`))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, report, newFetchError("decode", source, ErrParse, err)
	}

	report.Entries = len(entries)
	records := make([]record.Record, 0, len(entries))
	for i, entry := range entries {
		rec, reason := mapEntry(entry)
		if reason != "" {
			report.Skipped = append(report.Skipped, Skipped{Index: i, Reason: reason})
			continue
		}
		records = append(records, rec)
	}
	report.Kept = len(records)
	return records, report, nil
}

func mapEntry(entry json.RawMessage) (record.Record, string) {
	var raw rawRecord
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return record.Record{}, SkipNotAnObject
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return record.Record{}, SkipNotAnObject
	}
	country := strings.TrimSpace(string(raw.Country))
	if country == "" {
		return record.Record{}, SkipMissingCountry
	}
	if !raw.Cases.Valid || !raw.Deaths.Valid {
		return record.Record{}, SkipMissingCounts
	}
	if raw.Cases.Value < 0 || raw.Deaths.Value < 0 {
		return record.Record{}, SkipNegativeCounts
	}

	rec := record.Record{
		Country:     country,
		Cases:       raw.Cases.Value,
		Deaths:      raw.Deaths.Value,
		CasesTotal:  raw.Cases.Value,
		DeathsTotal: raw.Deaths.Value,
		ReportDate:  record.NormalizeDate(string(raw.DateRep)),
	}
	if raw.Population.Valid && raw.Population.Value > 0 {
		rec.Population = raw.Population.Value
	}
	return rec, ""
}

// flexInt accepts a JSON number or a numeric string. null, "" and anything
// unparseable leave Valid false.
type flexInt struct {
	Value int64
	Valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = flexInt{}
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.Value, f.Valid = v, true
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return nil
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return nil
	}
	f.Value, f.Valid = int64(v), true
	return nil
}

// flexString accepts a JSON string; any other value decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*f = ""
		return nil
	}
	*f = flexString(s)
	return nil
}
