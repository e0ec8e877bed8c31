package embed

import (
	"slices"
	"sync"
	"time"
)

type callSample struct {
	at     time.Time
	ms     int64
	failed bool
}

// StatsSnapshot aggregates embedding calls seen within the stats window.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// LatencyStats keeps a rolling window of embedding call latencies.
type LatencyStats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []callSample
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, samples: make([]callSample, 0, 128)}
}

// Record adds a successful call.
func (s *LatencyStats) Record(ms int64) { s.add(ms, false) }

// RecordFailure adds a call that returned an error.
func (s *LatencyStats) RecordFailure(ms int64) { s.add(ms, true) }

func (s *LatencyStats) add(ms int64, failed bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(now)
	s.samples = append(s.samples, callSample{at: now, ms: max(ms, 0), failed: failed})
}

// Snapshot summarizes the current window.
func (s *LatencyStats) Snapshot() StatsSnapshot {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(now)

	var snap StatsSnapshot
	if len(s.samples) == 0 {
		return snap
	}

	ms := make([]int64, len(s.samples))
	var total int64
	for i, sm := range s.samples {
		ms[i] = sm.ms
		total += sm.ms
		if sm.failed {
			snap.Errors++
		}
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expire drops samples older than the window. Caller holds mu.
func (s *LatencyStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm callSample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
