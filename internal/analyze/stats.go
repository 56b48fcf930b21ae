package analyze

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	source   string
	duration time.Duration
	failed   bool
}

// StatsSnapshot aggregates the analyses still inside the window.
type StatsSnapshot struct {
	Count    int            `json:"count"`
	Failed   int            `json:"failed"`
	BySource map[string]int `json:"by_source"`
	MinMs    int64          `json:"min_ms"`
	MaxMs    int64          `json:"max_ms"`
	AvgMs    float64        `json:"avg_ms"`
	P50Ms    float64        `json:"p50_ms"`
	P95Ms    float64        `json:"p95_ms"`
}

// Stats keeps recent analysis timings within a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

// NewStats returns a Stats with the given window; <= 0 means one hour.
func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one analysis. Negative durations count as zero.
func (s *Stats) Record(source string, d time.Duration, failed bool) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.samples = append(s.samples, sample{at: now, source: source, duration: d, failed: failed})
}

// Snapshot summarizes the current window.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())

	snap := StatsSnapshot{BySource: map[string]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	ms := make([]int64, len(s.samples))
	var total int64
	for i, sm := range s.samples {
		ms[i] = sm.duration.Milliseconds()
		total += ms[i]
		if sm.failed {
			snap.Failed++
		}
		if sm.source != "" {
			snap.BySource[sm.source]++
		}
	}
	sort.Slice(ms, func(a, b int) bool { return ms[a] < ms[b] })

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = interpolate(ms, 0.50)
	snap.P95Ms = interpolate(ms, 0.95)
	return snap
}

// expireLocked drops samples older than the window. Samples arrive in time
// order, so the live ones are a suffix.
func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := sort.Search(len(s.samples), func(i int) bool { return !s.samples[i].at.Before(cutoff) })
	if i > 0 {
		s.samples = append(s.samples[:0], s.samples[i:]...)
	}
}

// interpolate returns the q-quantile (0..1) of sorted values, linearly
// interpolating between neighbors.
func interpolate(sorted []int64, q float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case q <= 0:
		return float64(sorted[0])
	case q >= 1:
		return float64(sorted[len(sorted)-1])
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
