package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/casesheet/internal/casesheet"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusSummarizing JobStatus = "summarizing"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one uploaded case sheet through the pipeline.
type Job struct {
	mu sync.Mutex

	ID       string
	UserID   int64
	Filename string

	Status      JobStatus
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	summary   string
	report    *casesheet.Report
	summaryID int64
	err       string

	// Internal: not serialized.
	fileData []byte
	done     chan struct{}
}

// NewJob returns a queued job owning data.
func NewJob(userID int64, filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		UserID:      userID,
		Filename:    filename,
		Status:      StatusQueued,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
		done:        make(chan struct{}),
	}
}

// SetStatus moves a running job to another non-terminal status.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Finished() {
		return
	}
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Complete records the stored summary and releases waiters.
func (j *Job) Complete(report *casesheet.Report, summary string, summaryID int64) {
	j.finish(StatusCompleted, func() {
		j.report = report
		j.summary = summary
		j.summaryID = summaryID
	})
}

// Fail records err and releases waiters.
func (j *Job) Fail(err error) {
	j.finish(StatusFailed, func() { j.err = err.Error() })
}

func (j *Job) finish(status JobStatus, set func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Finished() {
		return
	}
	set()
	j.Status = status
	j.UpdatedAt = time.Now()
	j.fileData = nil
	close(j.done)
}

// Done is closed once the job completes or fails.
func (j *Job) Done() <-chan struct{} { return j.done }

// FileData returns the raw file bytes; nil once the job is finished.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

func (j *Job) finishedBefore(cutoff time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status.Finished() && j.UpdatedAt.Before(cutoff)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string            `json:"job_id"`
	Status      JobStatus         `json:"status"`
	Filename    string            `json:"filename"`
	ContentHash string            `json:"content_hash"`
	Summary     string            `json:"summary,omitempty"`
	SummaryID   int64             `json:"summary_id,omitempty"`
	Report      *casesheet.Report `json:"report,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	UserID int64 `json:"-"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Summary:     j.summary,
		SummaryID:   j.summaryID,
		Report:      j.report,
		Error:       j.err,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		UserID:      j.UserID,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs idle for longer than the TTL. Running jobs
// are never evicted.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, job := range s.jobs {
		if job.finishedBefore(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
