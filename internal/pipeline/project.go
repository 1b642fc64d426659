package pipeline

import "github.com/keilerkonzept/covid-dashboard-tui/internal/record"

// Series names of the chart projection.
const (
	SeriesCases  = "Cases"
	SeriesDeaths = "Deaths"
)

// Series is one named line of the chart.
type Series struct {
	Name   string
	Values []float64
}

// TimeSeries is the chart projection: one category label per record and two
// series aligned with the labels. The y axis always starts at YMin.
type TimeSeries struct {
	Labels []string
	Series [2]Series
	YMin   float64
}

// Len is the number of points in each series.
func (ts TimeSeries) Len() int { return len(ts.Labels) }

// YMax is the largest value across both series, or YMin when empty.
func (ts TimeSeries) YMax() float64 {
	m := ts.YMin
	for _, s := range ts.Series {
		for _, v := range s.Values {
			m = max(m, v)
		}
	}
	return m
}

// Project builds the chart projection. Labels are report dates used as
// categories: a missing date becomes an empty label and duplicates are kept,
// so points stay one-to-one with records.
func Project(records []record.DerivedRecord) TimeSeries {
	ts := TimeSeries{
		Labels: make([]string, len(records)),
		Series: [2]Series{
			{Name: SeriesCases, Values: make([]float64, len(records))},
			{Name: SeriesDeaths, Values: make([]float64, len(records))},
		},
	}
	for i, r := range records {
		ts.Labels[i] = r.ReportDate
		ts.Series[0].Values[i] = float64(r.Cases)
		ts.Series[1].Values[i] = float64(r.Deaths)
	}
	return ts
}

// Row is one table line, one cell per column.
type Row []string

// TableRows projects records into display rows for columns, in record order.
// Per-1000 rates are formatted with two decimals.
func TableRows(records []record.DerivedRecord, columns []record.Column) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		row := make(Row, len(columns))
		for j, c := range columns {
			row[j] = r.Text(c)
		}
		rows[i] = row
	}
	return rows
}
