// Package rank ranks countries by recent case counts with a sliding-window
// top-K sketch. One sketch tick is one report day.
package rank

import (
	"sort"
	"time"

	"github.com/keilerkonzept/topk/sliding"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

const day = 24 * time.Hour

// Config sizes the sketch.
type Config struct {
	K            int
	WindowDays   int
	Width        int
	Depth        int
	Decay        float64
	DecayLUTSize int
}

// DefaultConfig tracks the top 20 countries over the last 14 report days.
func DefaultConfig() Config {
	return Config{
		K:            20,
		WindowDays:   14,
		Width:        3000,
		Depth:        3,
		Decay:        0.9,
		DecayLUTSize: 8192,
	}
}

// Entry is one ranked country.
type Entry struct {
	Rank    int
	Country string
	// Cases is the sketch's estimate of cases in the window.
	Cases uint32
}

// Leaderboard is the ranking of one dataset.
type Leaderboard struct {
	Entries []Entry
	// WindowEnd is the newest report date fed into the sketch.
	WindowEnd  string
	WindowDays int
}

// Lookup returns the entry for country, if it is ranked.
func (l Leaderboard) Lookup(country string) (Entry, bool) {
	for _, e := range l.Entries {
		if e.Country == country {
			return e, true
		}
	}
	return Entry{}, false
}

// Build feeds the dated records into a fresh sketch in date order and returns
// the top-K countries at the newest date. Undated records are ignored.
func Build(records []record.Record, cfg Config) Leaderboard {
	def := DefaultConfig()
	if cfg.K < 1 {
		cfg.K = 1
	}
	if cfg.WindowDays < 1 {
		cfg.WindowDays = 1
	}
	if cfg.Width < 1 {
		cfg.Width = def.Width
	}
	if cfg.Depth < 1 {
		cfg.Depth = def.Depth
	}
	if cfg.DecayLUTSize < 1 {
		cfg.DecayLUTSize = def.DecayLUTSize
	}

	type dated struct {
		at    time.Time
		label string
		rec   record.Record
	}
	var rows []dated
	for _, r := range records {
		if at, ok := r.Date(); ok {
			rows = append(rows, dated{at: at, label: r.ReportDate, rec: r})
		}
	}
	if len(rows) == 0 {
		return Leaderboard{WindowDays: cfg.WindowDays}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })

	sketch := newSketch(cfg)
	last := rows[0].at
	for _, row := range rows {
		if ticks := int(row.at.Sub(last) / day); ticks > 0 {
			sketch.Ticks(ticks)
			last = row.at
		}
		if row.rec.Cases > 0 {
			sketch.Add(row.rec.Country, clampCount(row.rec.Cases))
		}
	}

	return Leaderboard{
		Entries:    entries(sketch, cfg.K),
		WindowEnd:  rows[len(rows)-1].label,
		WindowDays: cfg.WindowDays,
	}
}

func newSketch(cfg Config) *sliding.Sketch {
	return sliding.New(cfg.K, cfg.WindowDays,
		sliding.WithWidth(cfg.Width),
		sliding.WithDepth(cfg.Depth),
		sliding.WithDecay(float32(cfg.Decay)),
		sliding.WithDecayLUTSize(cfg.DecayLUTSize),
	)
}

// entries re-reads tracked counts over the current window and ranks by count,
// then name.
func entries(sketch *sliding.Sketch, k int) []Entry {
	items := sketch.SortedSlice()
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		n := sketch.Count(item.Item)
		if n == 0 {
			continue
		}
		out = append(out, Entry{Country: item.Item, Cases: n})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cases != out[j].Cases {
			return out[i].Cases > out[j].Cases
		}
		return out[i].Country < out[j].Country
	})
	if len(out) > k {
		out = out[:k]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func clampCount(n int64) uint32 {
	const maxCount = int64(^uint32(0))
	if n > maxCount {
		return uint32(maxCount)
	}
	return uint32(n)
}
