package record

import "strconv"

// Column identifies a sortable field of a DerivedRecord.
type Column string

const (
	ColumnCountry     Column = "countriesAndTerritories"
	ColumnCases       Column = "cases"
	ColumnDeaths      Column = "deaths"
	ColumnCasesTotal  Column = "cases_total"
	ColumnDeathsTotal Column = "deaths_total"
	ColumnCasesPer1k  Column = "casesPer1k"
	ColumnDeathsPer1k Column = "deathsPer1k"
	ColumnPopulation  Column = "population"
	ColumnReportDate  Column = "dateRep"
)

// TableColumns lists the columns shown by the table view, in display order.
var TableColumns = []Column{
	ColumnCountry,
	ColumnReportDate,
	ColumnCases,
	ColumnDeaths,
	ColumnCasesTotal,
	ColumnDeathsTotal,
	ColumnCasesPer1k,
	ColumnDeathsPer1k,
}

var columnTitles = map[Column]string{
	ColumnCountry:     "Country",
	ColumnCases:       "Cases",
	ColumnDeaths:      "Deaths",
	ColumnCasesTotal:  "Total Cases",
	ColumnDeathsTotal: "Total Deaths",
	ColumnCasesPer1k:  "Cases/1k",
	ColumnDeathsPer1k: "Deaths/1k",
	ColumnPopulation:  "Population",
	ColumnReportDate:  "Date",
}

// Title is the human-readable column header.
func (c Column) Title() string {
	if t, ok := columnTitles[c]; ok {
		return t
	}
	return string(c)
}

// Valid reports whether c names a known column.
func (c Column) Valid() bool {
	_, ok := columnTitles[c]
	return ok
}

// Numeric reports whether values of c compare as numbers.
func (c Column) Numeric() bool {
	switch c {
	case ColumnCases, ColumnDeaths, ColumnCasesTotal, ColumnDeathsTotal,
		ColumnCasesPer1k, ColumnDeathsPer1k, ColumnPopulation:
		return true
	}
	return false
}

// Number returns the numeric value of column c. ok is false for text columns.
func (d DerivedRecord) Number(c Column) (v float64, ok bool) {
	switch c {
	case ColumnCases:
		return float64(d.Cases), true
	case ColumnDeaths:
		return float64(d.Deaths), true
	case ColumnCasesTotal:
		return float64(d.CasesTotal), true
	case ColumnDeathsTotal:
		return float64(d.DeathsTotal), true
	case ColumnCasesPer1k:
		return d.CasesPer1k, true
	case ColumnDeathsPer1k:
		return d.DeathsPer1k, true
	case ColumnPopulation:
		return float64(d.Population), true
	}
	return 0, false
}

// Text returns the string form of column c.
func (d DerivedRecord) Text(c Column) string {
	switch c {
	case ColumnCountry:
		return d.Country
	case ColumnReportDate:
		return d.ReportDate
	case ColumnCasesPer1k:
		return strconv.FormatFloat(d.CasesPer1k, 'f', 2, 64)
	case ColumnDeathsPer1k:
		return strconv.FormatFloat(d.DeathsPer1k, 'f', 2, 64)
	}
	if v, ok := d.Number(c); ok {
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
