package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/casesheet/internal/analyze"
	"github.com/dgallion1/casesheet/internal/casesheet"
	"github.com/dgallion1/casesheet/internal/metrics"
)

type fakeAnalyzer struct {
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, filename string, data []byte) (*casesheet.Report, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &casesheet.Report{Filename: filename, Fallback: string(data), State: "s", Status: "t"}, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (r *fakeRecorder) SaveSummary(_ context.Context, userID int64, filename, summary string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.saved = append(r.saved, summary)
	return int64(len(r.saved)), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrchestrator_SubmitAndWait(t *testing.T) {
	rec := &fakeRecorder{}
	o := NewOrchestrator(Config{Workers: 2, QueueSize: 4}, &fakeAnalyzer{}, rec, metrics.New(), testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob(3, "a.txt", []byte("Diagnosis: flu"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := o.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
	if snap.SummaryID != 1 || len(rec.saved) != 1 || rec.saved[0] != snap.Summary {
		t.Errorf("summary not recorded: %+v saved=%v", snap, rec.saved)
	}
}

func TestOrchestrator_AnalyzerError(t *testing.T) {
	o := NewOrchestrator(Config{Workers: 1}, &fakeAnalyzer{err: errors.New("no readable text found in the case sheet")}, &fakeRecorder{}, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob(1, "a.pdf", nil)
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap, err := o.Wait(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if snap.Status != StatusFailed || snap.Error != "no readable text found in the case sheet" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestOrchestrator_RecorderError(t *testing.T) {
	o := NewOrchestrator(Config{Workers: 1}, &fakeAnalyzer{}, &fakeRecorder{err: errors.New("disk full")}, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob(1, "a.txt", []byte("x"))
	_ = o.Submit(job)
	snap, _ := o.Wait(context.Background(), job.ID)
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", snap.Status)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	o := NewOrchestrator(Config{Workers: 1, QueueSize: 1}, &fakeAnalyzer{block: block, started: started}, nil, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()
	defer close(block)

	first := NewJob(1, "1.txt", nil)
	if err := o.Submit(first); err != nil {
		t.Fatalf("submit first: %v", err)
	}
	<-started // worker holds the first job

	if err := o.Submit(NewJob(1, "2.txt", nil)); err != nil {
		t.Fatalf("submit second: %v", err)
	}
	third := NewJob(1, "3.txt", nil)
	if err := o.Submit(third); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if third.Snapshot().Status != StatusFailed {
		t.Error("rejected job should be failed")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_WaitContext(t *testing.T) {
	block := make(chan struct{})
	o := NewOrchestrator(Config{Workers: 1}, &fakeAnalyzer{block: block}, nil, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()
	defer close(block)

	job := NewJob(1, "slow.txt", nil)
	_ = o.Submit(job)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := o.Wait(ctx, job.ID); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if _, err := o.Wait(ctx, "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestOrchestrator_StopFailsPending(t *testing.T) {
	o := NewOrchestrator(Config{Workers: 1, QueueSize: 2}, &fakeAnalyzer{}, nil, nil, testLogger())
	job := NewJob(1, "never.txt", nil)
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	o.Stop()
	o.Stop()

	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Error != ErrStopped.Error() {
		t.Errorf("expected pending job failed on stop, got %+v", snap)
	}
	if err := o.Submit(NewJob(1, "late.txt", nil)); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestWorker_StatusFollowsStages(t *testing.T) {
	job := NewJob(1, "a.txt", []byte("Diagnosis: flu"))
	inner := analyze.New(analyze.Options{Logger: testLogger()})

	var seen []JobStatus
	wrapped := analyzerFunc(func(ctx context.Context, filename string, data []byte) (*casesheet.Report, error) {
		seen = append(seen, job.Snapshot().Status)
		rep, err := inner.Analyze(ctx, filename, data)
		seen = append(seen, job.Snapshot().Status)
		return rep, err
	})
	rec := recorderFunc(func() { seen = append(seen, job.Snapshot().Status) })

	NewWorker(wrapped, rec, nil, testLogger()).Process(context.Background(), job)

	want := []JobStatus{StatusParsing, StatusSummarizing, StatusStoring}
	if len(seen) != len(want) {
		t.Fatalf("expected statuses %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
	if job.Snapshot().Status != StatusCompleted {
		t.Errorf("expected completed, got %q", job.Snapshot().Status)
	}
}

type analyzerFunc func(ctx context.Context, filename string, data []byte) (*casesheet.Report, error)

func (f analyzerFunc) Analyze(ctx context.Context, filename string, data []byte) (*casesheet.Report, error) {
	return f(ctx, filename, data)
}

type recorderFunc func()

func (f recorderFunc) SaveSummary(context.Context, int64, string, string) (int64, error) {
	f()
	return 1, nil
}
