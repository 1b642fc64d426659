package pipeline

import (
	"slices"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

func italyRecords() []record.Record {
	return []record.Record{
		{Country: "Italy", Cases: 100, Deaths: 10, CasesTotal: 100, DeathsTotal: 10, Population: 60000000, ReportDate: "2020-03-01"},
		{Country: "italy", Cases: 50, Deaths: 5, CasesTotal: 50, DeathsTotal: 5, Population: 60000000, ReportDate: "2020-03-02"},
	}
}

func mixedRecords() []record.Record {
	return []record.Record{
		{Country: "Spain", Cases: 30, Deaths: 3, CasesTotal: 30, DeathsTotal: 3, Population: 47000000, ReportDate: "2020-03-03"},
		{Country: "Italy", Cases: 100, Deaths: 10, CasesTotal: 100, DeathsTotal: 10, Population: 60000000, ReportDate: "2020-03-01"},
		{Country: "Chad", Cases: 7, Deaths: 1, CasesTotal: 7, DeathsTotal: 1, ReportDate: "2020-03-05"},
		{Country: "Åland", Cases: 2, Deaths: 0, CasesTotal: 2, DeathsTotal: 0, Population: 30000},
		{Country: "france", Cases: 55, Deaths: 4, CasesTotal: 55, DeathsTotal: 4, Population: 67000000, ReportDate: "2020-03-02"},
	}
}

func countries(rs []record.DerivedRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Country
	}
	return out
}

func TestFilter_CountrySubstringIsCaseInsensitive(t *testing.T) {
	got := Filter(italyRecords(), FilterCriteria{Country: "ita"})
	assert.Equal(t, italyRecords(), got)

	got = Filter(italyRecords(), FilterCriteria{Country: "ITA"})
	assert.Len(t, got, 2)

	got = Filter(mixedRecords(), FilterCriteria{Country: "an"})
	assert.Equal(t, []string{"Åland", "france"}, countries(DeriveAll(got)))
}

func TestFilter_DateRange(t *testing.T) {
	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{
			name:     "no bounds passes everything",
			criteria: FilterCriteria{},
			want:     []string{"Spain", "Italy", "Chad", "Åland", "france"},
		},
		{
			name:     "both bounds inclusive",
			criteria: FilterCriteria{StartDate: "2020-03-02", EndDate: "2020-03-03"},
			want:     []string{"Spain", "france"},
		},
		{
			name:     "source date form accepted for bounds",
			criteria: FilterCriteria{StartDate: "01/03/2020", EndDate: "01/03/2020"},
			want:     []string{"Italy"},
		},
		{
			name:     "only start set disables date filtering",
			criteria: FilterCriteria{StartDate: "2020-03-04"},
			want:     []string{"Spain", "Italy", "Chad", "Åland", "france"},
		},
		{
			name:     "only end set disables date filtering",
			criteria: FilterCriteria{EndDate: "2020-03-01"},
			want:     []string{"Spain", "Italy", "Chad", "Åland", "france"},
		},
		{
			name:     "open bounds with only start",
			criteria: FilterCriteria{StartDate: "2020-03-03", Bounds: BoundsOpen},
			want:     []string{"Spain", "Chad"},
		},
		{
			name:     "open bounds with only end",
			criteria: FilterCriteria{EndDate: "2020-03-01", Bounds: BoundsOpen},
			want:     []string{"Italy"},
		},
		{
			name:     "open bounds with none set",
			criteria: FilterCriteria{Bounds: BoundsOpen},
			want:     []string{"Spain", "Italy", "Chad", "Åland", "france"},
		},
		{
			name:     "unparseable bound matches nothing",
			criteria: FilterCriteria{StartDate: "2020-03-01", EndDate: "soon"},
			want:     []string{},
		},
		{
			name:     "inverted range matches nothing",
			criteria: FilterCriteria{StartDate: "2020-03-05", EndDate: "2020-03-01"},
			want:     []string{},
		},
		{
			name:     "date and country combine",
			criteria: FilterCriteria{StartDate: "2020-03-01", EndDate: "2020-03-05", Country: "a"},
			want:     []string{"Spain", "Italy", "Chad", "france"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := countries(DeriveAll(Filter(mixedRecords(), tt.criteria)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_SelectedCountryIsExact(t *testing.T) {
	got := Filter(italyRecords(), FilterCriteria{SelectedCountry: "Italy"})
	require.Len(t, got, 1)
	assert.Equal(t, int64(100), got[0].Cases)

	got = Filter(italyRecords(), FilterCriteria{SelectedCountry: "Ital"})
	assert.Empty(t, got)

	got = Filter(mixedRecords(), FilterCriteria{SelectedCountry: "Spain", Country: "xyz"})
	assert.Empty(t, got)
}

func TestFilter_IsPure(t *testing.T) {
	in := mixedRecords()
	before := slices.Clone(in)
	c := FilterCriteria{StartDate: "2020-03-01", EndDate: "2020-03-03", Country: "i"}

	first := Filter(in, c)
	second := Filter(in, c)
	assert.Equal(t, first, second)
	assert.Equal(t, before, in)

	if len(first) > 0 {
		first[0].Country = "mutated"
		assert.NotEqual(t, "mutated", in[0].Country)
	}
}

// rate computes the expected value with runtime float64 arithmetic, not exact
// constant arithmetic.
func rate(n, population float64) float64 {
	return (n / population) * 1000
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name       string
		rec        record.Record
		cases, dth float64
	}{
		{
			name:  "with population",
			rec:   record.Record{Country: "Italy", Cases: 100, Deaths: 10, Population: 60000000},
			cases: rate(100, 60000000),
			dth:   rate(10, 60000000),
		},
		{
			name:  "zero population defaults to zero",
			rec:   record.Record{Country: "X", Cases: 100, Deaths: 3, Population: 0},
			cases: 0,
			dth:   0,
		},
		{
			name:  "negative population defaults to zero",
			rec:   record.Record{Country: "X", Cases: 100, Population: -5},
			cases: 0,
		},
		{
			name:  "small population",
			rec:   record.Record{Country: "Holy See", Cases: 27, Deaths: 0, Population: 815},
			cases: rate(27, 815),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Derive(tt.rec)
			assert.Equal(t, tt.cases, d.CasesPer1k)
			assert.Equal(t, tt.dth, d.DeathsPer1k)
			assert.Equal(t, tt.rec, d.Record)
		})
	}
}

func TestSort_CasesDescending(t *testing.T) {
	got := Sort(DeriveAll(italyRecords()), SortSpec{Column: record.ColumnCases, Direction: Desc})
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].Cases)
	assert.Equal(t, int64(50), got[1].Cases)

	got = Sort(DeriveAll(italyRecords()), SortSpec{Column: record.ColumnCases, Direction: Asc})
	assert.Equal(t, int64(50), got[0].Cases)
}

func TestSort_TextColumnsIgnoreCase(t *testing.T) {
	got := Sort(DeriveAll(mixedRecords()), SortSpec{Column: record.ColumnCountry, Direction: Asc})
	assert.Equal(t, []string{"Åland", "Chad", "france", "Italy", "Spain"}, countries(got))
}

func TestSort_ReportDateAsText(t *testing.T) {
	got := Sort(DeriveAll(mixedRecords()), SortSpec{Column: record.ColumnReportDate, Direction: Desc})
	assert.Equal(t, []string{"Chad", "Spain", "france", "Italy", "Åland"}, countries(got))
}

func TestSort_StableTies(t *testing.T) {
	in := DeriveAll([]record.Record{
		{Country: "A", Cases: 1},
		{Country: "B", Cases: 2},
		{Country: "C", Cases: 1},
		{Country: "D", Cases: 2},
	})
	asc := Sort(in, SortSpec{Column: record.ColumnCases, Direction: Asc})
	assert.Equal(t, []string{"A", "C", "B", "D"}, countries(asc))

	desc := Sort(in, SortSpec{Column: record.ColumnCases, Direction: Desc})
	assert.Equal(t, []string{"B", "D", "A", "C"}, countries(desc))
}

func TestSort_NoColumnKeepsOrder(t *testing.T) {
	in := DeriveAll(mixedRecords())
	got := Sort(in, SortSpec{})
	assert.Equal(t, in, got)

	got[0].Country = "mutated"
	assert.Equal(t, "Spain", in[0].Country)
}

func TestSort_UnknownColumnKeepsOrder(t *testing.T) {
	in := DeriveAll(mixedRecords())
	s := SortSpec{Column: "bogus", Direction: Desc}
	assert.False(t, s.Active())
	assert.Equal(t, in, Sort(in, s))
	assert.Equal(t, "unsorted", s.String())
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := DeriveAll(mixedRecords())
	before := slices.Clone(in)
	_ = Sort(in, SortSpec{Column: record.ColumnDeathsPer1k, Direction: Desc})
	assert.Equal(t, before, in)
}

func TestSort_IdempotentAndReversible(t *testing.T) {
	in := DeriveAll(mixedRecords())
	for _, c := range record.TableColumns {
		t.Run(string(c), func(t *testing.T) {
			asc := SortSpec{Column: c, Direction: Asc}
			once := Sort(in, asc)
			twice := Sort(once, asc)
			assert.Equal(t, once, twice)

			if c == record.ColumnDeathsPer1k {
				// Chad and Åland both derive 0 deaths per 1k; ties keep input order.
				return
			}
			desc := Sort(in, SortSpec{Column: c, Direction: Desc})
			reversed := slices.Clone(desc)
			slices.Reverse(reversed)
			assert.Equal(t, countries(once), countries(reversed))
		})
	}
}

func TestSortSpec_Toggle(t *testing.T) {
	var s SortSpec
	assert.False(t, s.Active())
	assert.Equal(t, "unsorted", s.String())

	s = s.Toggle(record.ColumnCases)
	assert.Equal(t, SortSpec{Column: record.ColumnCases, Direction: Asc}, s)

	s = s.Toggle(record.ColumnCases)
	assert.Equal(t, SortSpec{Column: record.ColumnCases, Direction: Desc}, s)

	s = s.Toggle(record.ColumnCases)
	assert.Equal(t, Asc, s.Direction)

	s = s.Toggle(record.ColumnCases).Toggle(record.ColumnCountry)
	assert.Equal(t, SortSpec{Column: record.ColumnCountry, Direction: Asc}, s)
	assert.Equal(t, "countriesAndTerritories:asc", s.String())
}

func TestProject(t *testing.T) {
	recs := DeriveAll([]record.Record{
		{Country: "Italy", Cases: 100, Deaths: 10, ReportDate: "2020-03-01"},
		{Country: "Italy", Cases: 50, Deaths: 5},
		{Country: "Spain", Cases: 30, Deaths: 3, ReportDate: "2020-03-01"},
	})
	ts := Project(recs)

	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, []string{"2020-03-01", "", "2020-03-01"}, ts.Labels)
	assert.Equal(t, SeriesCases, ts.Series[0].Name)
	assert.Equal(t, []float64{100, 50, 30}, ts.Series[0].Values)
	assert.Equal(t, SeriesDeaths, ts.Series[1].Name)
	assert.Equal(t, []float64{10, 5, 3}, ts.Series[1].Values)
	assert.Equal(t, 0.0, ts.YMin)
	assert.Equal(t, 100.0, ts.YMax())

	empty := Project(nil)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0.0, empty.YMax())
}

func TestTableRows(t *testing.T) {
	rows := TableRows(DeriveAll(italyRecords()[:1]), record.TableColumns)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"Italy", "2020-03-01", "100", "10", "100", "10", "0.00", "0.00"}, rows[0])

	rows = TableRows(DeriveAll([]record.Record{{Country: "Holy See", Cases: 27, Population: 815}}),
		[]record.Column{record.ColumnCountry, record.ColumnCasesPer1k})
	assert.Equal(t, Row{"Holy See", "33.13"}, rows[0])
}

func TestApply_TableAndChartAgree(t *testing.T) {
	criteria := FilterCriteria{StartDate: "2020-03-01", EndDate: "2020-03-05", Country: "a"}
	spec := SortSpec{Column: record.ColumnCasesPer1k, Direction: Desc}

	view := Apply(mixedRecords(), criteria, spec)
	rows := TableRows(view.Records, record.TableColumns)
	ts := Project(view.Records)

	require.Equal(t, len(rows), ts.Len())
	for i, row := range rows {
		assert.Equal(t, row[1], ts.Labels[i])
		assert.Equal(t, row[2], strconv.FormatFloat(ts.Series[0].Values[i], 'f', -1, 64))
		assert.Equal(t, row[3], strconv.FormatFloat(ts.Series[1].Values[i], 'f', -1, 64))
	}
	assert.Equal(t, []string{"Italy", "france", "Spain", "Chad"}, countries(view.Records))
	assert.Equal(t, criteria, view.Criteria)
	assert.Equal(t, spec, view.Sort)
}

func TestCountriesAndLatestDate(t *testing.T) {
	recs := append(italyRecords(), mixedRecords()...)
	assert.Equal(t, []string{"Italy", "italy", "Spain", "Chad", "Åland", "france"}, Countries(recs))

	d, ok := LatestDate(recs)
	assert.True(t, ok)
	assert.Equal(t, "2020-03-01", d)

	_, ok = LatestDate([]record.Record{{Country: "X"}})
	assert.False(t, ok)
}
