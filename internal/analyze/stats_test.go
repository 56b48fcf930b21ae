package analyze

import (
	"testing"
	"time"
)

func TestStatsSnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	for i, ms := range []int64{100, 200, 300, 400, 500} {
		s.Record("text", time.Duration(ms)*time.Millisecond, i == 4)
	}

	snap := s.Snapshot()
	if snap.Count != 5 || snap.Failed != 1 {
		t.Fatalf("expected count=5 failed=1, got %d/%d", snap.Count, snap.Failed)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 || snap.P50Ms != 300 {
		t.Fatalf("expected avg=p50=300, got %f/%f", snap.AvgMs, snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.BySource["text"] != 5 {
		t.Fatalf("expected 5 text samples, got %v", snap.BySource)
	}
}

func TestStatsExpiresOldSamples(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewStats(time.Minute)
	s.now = func() time.Time { return now }

	s.Record("ocr", time.Second, false)
	now = now.Add(2 * time.Minute)
	if got := s.Snapshot().Count; got != 0 {
		t.Fatalf("expected expired sample, got count=%d", got)
	}

	s.Record("text", 2*time.Second, false)
	snap := s.Snapshot()
	if snap.Count != 1 || snap.MinMs != 2000 {
		t.Fatalf("expected one fresh sample of 2000ms, got %+v", snap)
	}
}

func TestStatsNegativeDuration(t *testing.T) {
	s := NewStats(0)
	s.Record("", -time.Second, false)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Fatalf("expected clamp to 0, got %d", snap.MinMs)
	}
	if len(snap.BySource) != 0 {
		t.Fatalf("empty source should not be counted, got %v", snap.BySource)
	}
}
