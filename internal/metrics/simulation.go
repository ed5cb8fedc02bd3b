package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// SimulationMetrics times pack generation across simulation workers.
type SimulationMetrics struct {
	packTime *Histogram
	packs    atomic.Int64
	cards    atomic.Int64
	start    time.Time
	now      func() time.Time
}

// NewSimulationMetrics starts the clock for a simulation run.
func NewSimulationMetrics() *SimulationMetrics {
	m := &SimulationMetrics{
		packTime: NewHistogram(100000),
		now:      time.Now,
	}
	m.start = m.now()
	return m
}

// ObservePack records one generated pack.
func (m *SimulationMetrics) ObservePack(cards int, took time.Duration) {
	m.packs.Add(1)
	m.cards.Add(int64(cards))
	m.packTime.Record(took)
}

// Summary is a snapshot of a simulation run.
type Summary struct {
	Packs     int64
	Cards     int64
	Elapsed   time.Duration
	PacksPerS float64
	MeanMs    float64
	P50Ms     float64
	P95Ms     float64
	P99Ms     float64
	SlowestMs float64
}

// Summary returns the run's totals and latency percentiles.
func (m *SimulationMetrics) Summary() Summary {
	elapsed := m.now().Sub(m.start)
	s := Summary{
		Packs:     m.packs.Load(),
		Cards:     m.cards.Load(),
		Elapsed:   elapsed,
		MeanMs:    m.packTime.Mean(),
		P50Ms:     m.packTime.Percentile(50),
		P95Ms:     m.packTime.Percentile(95),
		P99Ms:     m.packTime.Percentile(99),
		SlowestMs: m.packTime.Max(),
	}
	if elapsed > 0 {
		s.PacksPerS = float64(s.Packs) / elapsed.Seconds()
	}
	return s
}

// String formats the summary for the console.
func (s Summary) String() string {
	return fmt.Sprintf("%d packs (%d cards) in %s, %.0f packs/s, pack time mean %.3fms p50 %.3fms p95 %.3fms p99 %.3fms max %.3fms",
		s.Packs, s.Cards, s.Elapsed.Round(time.Millisecond), s.PacksPerS,
		s.MeanMs, s.P50Ms, s.P95Ms, s.P99Ms, s.SlowestMs)
}
