// Package metrics holds the Prometheus collectors for analyses, uploads,
// and the job queue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is registered on its own registry so tests and multiple servers
// don't collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	OCRPagesTotal    prometheus.Counter
	UploadsTotal     *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
	JobsTotal        *prometheus.CounterVec
	SummarizerErrors *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		AnalysesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casesheet_analyses_total",
				Help: "Case sheet analyses by outcome",
			},
			[]string{"outcome"},
		),

		AnalysisDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "casesheet_analysis_duration_seconds",
				Help:    "Time to analyze one case sheet",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"source"},
		),

		OCRPagesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "casesheet_ocr_pages_total",
				Help: "Pages recognized with OCR",
			},
		),

		UploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casesheet_uploads_total",
				Help: "Uploads by result",
			},
			[]string{"result"},
		),

		QueueDepth: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "casesheet_queue_depth",
				Help: "Jobs waiting for a worker",
			},
		),

		JobsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casesheet_jobs_total",
				Help: "Background jobs by final status",
			},
			[]string{"status"},
		),

		SummarizerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casesheet_summarizer_errors_total",
				Help: "Section summaries that failed and fell back",
			},
			[]string{"summarizer"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
