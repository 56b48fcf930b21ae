package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/casesheet/internal/casesheet"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob(7, "sheet.pdf", []byte("abc"))
	if job.ID == "" || job.Status != StatusQueued {
		t.Fatalf("unexpected new job: id=%q status=%q", job.ID, job.Status)
	}
	if other := NewJob(7, "sheet.pdf", []byte("abc")); other.ID == job.ID {
		t.Error("expected unique job ids")
	}
	if string(job.FileData()) != "abc" {
		t.Errorf("expected file data to be kept until finished")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob(1, "a.txt", nil)

	for _, status := range []JobStatus{StatusParsing, StatusSummarizing, StatusStoring} {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(status)
		snap := job.Snapshot()
		if snap.Status != status {
			t.Errorf("expected status %q, got %q", status, snap.Status)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", status)
		}
	}

	rep := &casesheet.Report{State: "ok"}
	job.Complete(rep, "summary text", 42)
	select {
	case <-job.Done():
	default:
		t.Fatal("expected Done to be closed after Complete")
	}

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Summary != "summary text" || snap.SummaryID != 42 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if job.FileData() != nil {
		t.Error("expected file data released after completion")
	}

	// Terminal status is sticky.
	job.SetStatus(StatusParsing)
	job.Fail(errors.New("late"))
	if got := job.Snapshot(); got.Status != StatusCompleted || got.Error != "" {
		t.Errorf("terminal job changed: %+v", got)
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob(1, "a.txt", []byte("x"))
	job.Fail(errors.New("no readable text found in the case sheet"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if snap.Error != "no readable text found in the case sheet" {
		t.Errorf("unexpected error %q", snap.Error)
	}
	<-job.Done()
}

func TestJobStore_CleanupKeepsRunningJobs(t *testing.T) {
	store := NewJobStore(time.Millisecond)
	running := NewJob(1, "run.txt", nil)
	finished := NewJob(1, "done.txt", nil)
	finished.Fail(errors.New("boom"))
	store.Put(running)
	store.Put(finished)

	time.Sleep(5 * time.Millisecond)
	if n := store.Cleanup(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if store.Get(running.ID) == nil {
		t.Error("running job evicted")
	}
	if store.Get(finished.ID) != nil {
		t.Error("finished job not evicted")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}

func TestJobStatus_Finished(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		StatusQueued: false, StatusParsing: false, StatusSummarizing: false,
		StatusStoring: false, StatusCompleted: true, StatusFailed: true,
	} {
		if status.Finished() != want {
			t.Errorf("%q.Finished() = %v, want %v", status, !want, want)
		}
	}
}
