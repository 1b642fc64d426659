package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

func rec(country, date string, cases int64) record.Record {
	return record.Record{Country: country, Cases: cases, CasesTotal: cases, ReportDate: date}
}

func TestBuild_RanksByRecentCases(t *testing.T) {
	records := []record.Record{
		rec("Spain", "2020-03-10", 40),
		rec("Italy", "2020-03-10", 100),
		rec("France", "2020-03-09", 30),
		rec("Italy", "2020-03-09", 20),
		rec("Chad", "2020-03-10", 0),
		rec("Spain", "2020-03-08", 25),
		{Country: "Nowhere", Cases: 1000},
	}

	lb := Build(records, DefaultConfig())
	require.Len(t, lb.Entries, 3)
	assert.Equal(t, Entry{Rank: 1, Country: "Italy", Cases: 120}, lb.Entries[0])
	assert.Equal(t, Entry{Rank: 2, Country: "Spain", Cases: 65}, lb.Entries[1])
	assert.Equal(t, Entry{Rank: 3, Country: "France", Cases: 30}, lb.Entries[2])
	assert.Equal(t, "2020-03-10", lb.WindowEnd)
	assert.Equal(t, 14, lb.WindowDays)

	_, ok := lb.Lookup("Chad")
	assert.False(t, ok)
	_, ok = lb.Lookup("Nowhere")
	assert.False(t, ok)
	e, ok := lb.Lookup("Spain")
	assert.True(t, ok)
	assert.Equal(t, 2, e.Rank)
}

func TestBuild_WindowExpiresOldDays(t *testing.T) {
	records := []record.Record{
		rec("Oldland", "2020-01-01", 5000),
		rec("Newland", "2020-02-01", 10),
	}
	cfg := DefaultConfig()
	cfg.WindowDays = 3

	lb := Build(records, cfg)
	require.NotEmpty(t, lb.Entries)
	assert.Equal(t, "Newland", lb.Entries[0].Country)
	_, ok := lb.Lookup("Oldland")
	assert.False(t, ok)
}

func TestBuild_TruncatesToK(t *testing.T) {
	records := []record.Record{
		rec("A", "2020-03-01", 5),
		rec("B", "2020-03-01", 4),
		rec("C", "2020-03-01", 3),
		rec("D", "2020-03-01", 2),
	}
	cfg := DefaultConfig()
	cfg.K = 2

	lb := Build(records, cfg)
	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "A", lb.Entries[0].Country)
	assert.Equal(t, "B", lb.Entries[1].Country)
}

func TestBuild_NoDatedRecords(t *testing.T) {
	lb := Build([]record.Record{{Country: "X", Cases: 3}}, DefaultConfig())
	assert.Empty(t, lb.Entries)
	assert.Equal(t, "", lb.WindowEnd)

	lb = Build(nil, Config{})
	assert.Empty(t, lb.Entries)
	assert.Equal(t, 1, lb.WindowDays)
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, uint32(7), clampCount(7))
	assert.Equal(t, ^uint32(0), clampCount(1<<40))
}
