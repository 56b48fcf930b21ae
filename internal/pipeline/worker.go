package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/casesheet/internal/analyze"
	"github.com/dgallion1/casesheet/internal/metrics"
)

// Worker processes a single summarization job.
type Worker struct {
	analyzer Analyzer
	recorder Recorder
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewWorker(analyzer Analyzer, rec Recorder, m *metrics.Metrics, log *slog.Logger) *Worker {
	return &Worker{analyzer: analyzer, recorder: rec, metrics: m, log: log}
}

// Process runs analysis and persistence for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: parse, then summarize once text is acquired.
	job.SetStatus(StatusParsing)
	actx := analyze.WithProgress(ctx, func(stage string) {
		if stage == analyze.StageSummarizing {
			job.SetStatus(StatusSummarizing)
		}
	})
	report, err := w.analyzer.Analyze(actx, job.Filename, job.FileData())
	if err != nil {
		w.fail(log, job, err)
		return
	}
	summary := report.Format()

	// Phase 2: store.
	var summaryID int64
	if w.recorder != nil {
		job.SetStatus(StatusStoring)
		summaryID, err = w.recorder.SaveSummary(ctx, job.UserID, job.Filename, summary)
		if err != nil {
			w.fail(log, job, fmt.Errorf("store summary: %w", err))
			return
		}
	}

	job.Complete(report, summary, summaryID)
	w.count(StatusCompleted)
	log.Info("job complete", "summary_id", summaryID, "duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) fail(log *slog.Logger, job *Job, err error) {
	log.Error("job failed", "status", job.Snapshot().Status, "error", err)
	job.Fail(err)
	w.count(StatusFailed)
}

func (w *Worker) count(status JobStatus) {
	if w.metrics != nil {
		w.metrics.JobsTotal.WithLabelValues(string(status)).Inc()
	}
}
