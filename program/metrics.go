package main

import (
	"sync/atomic"
	"time"
)

type durationRing struct {
	buf   []time.Duration
	idx   int
	count int
}

func newDurationRing(n int) *durationRing {
	if n < 1 {
		n = 1
	}
	return &durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) add(d time.Duration) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.idx] = d
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

type durationStats struct {
	last time.Duration
	max  time.Duration
	avg  time.Duration
	n    int
}

func (r *durationRing) snapshot() durationStats {
	if r.count == 0 {
		return durationStats{}
	}
	var sum time.Duration
	var max time.Duration
	for i := 0; i < r.count; i++ {
		d := r.buf[i]
		sum += d
		if d > max {
			max = d
		}
	}

	lastIdx := r.idx - 1
	if lastIdx < 0 {
		lastIdx = len(r.buf) - 1
	}
	last := r.buf[lastIdx]

	return durationStats{
		last: last,
		max:  max,
		avg:  sum / time.Duration(r.count),
		n:    r.count,
	}
}

// dashMetrics is written from the fetch command's goroutine and read from
// Update/View, hence the atomics. The pipeline ring is only touched from
// Update.
type dashMetrics struct {
	enabled atomic.Bool

	fetches       atomic.Uint64
	fetchFailures atomic.Uint64
	lastFetchNs   atomic.Int64
	records       atomic.Uint64
	skipped       atomic.Uint64

	pipelineRuns atomic.Uint64
	pipeline     *durationRing
}

func newDashMetrics(window int) *dashMetrics {
	return &dashMetrics{
		pipeline: newDurationRing(window),
	}
}

func (m *dashMetrics) setEnabled(v bool) { m.enabled.Store(v) }
func (m *dashMetrics) isEnabled() bool   { return m.enabled.Load() }

func (m *dashMetrics) observeFetch(took time.Duration, records, skipped int, err error) {
	m.fetches.Add(1)
	m.lastFetchNs.Store(int64(took))
	if err != nil {
		m.fetchFailures.Add(1)
		return
	}
	m.records.Store(uint64(records))
	m.skipped.Store(uint64(skipped))
}

func (m *dashMetrics) observePipeline(d time.Duration) {
	m.pipelineRuns.Add(1)
	if !m.isEnabled() {
		return
	}
	m.pipeline.add(d)
}

type snapshot struct {
	fetches       uint64
	fetchFailures uint64
	lastFetch     time.Duration
	records       uint64
	skipped       uint64
	pipelineRuns  uint64
	pipeline      durationStats
}

func (m *dashMetrics) snapshot() snapshot {
	return snapshot{
		fetches:       m.fetches.Load(),
		fetchFailures: m.fetchFailures.Load(),
		lastFetch:     time.Duration(m.lastFetchNs.Load()),
		records:       m.records.Load(),
		skipped:       m.skipped.Load(),
		pipelineRuns:  m.pipelineRuns.Load(),
		pipeline:      m.pipeline.snapshot(),
	}
}
