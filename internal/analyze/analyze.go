// Package analyze runs the case sheet pipeline: text acquisition, line
// filtering, section splitting, per-section summaries, condition and status
// heuristics.
package analyze

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/casesheet/internal/casesheet"
	"github.com/dgallion1/casesheet/internal/document"
	"github.com/dgallion1/casesheet/internal/metrics"
	"github.com/dgallion1/casesheet/internal/parser"
	"github.com/dgallion1/casesheet/internal/sentiment"
	"github.com/dgallion1/casesheet/internal/summarize"
	"github.com/dgallion1/casesheet/internal/topics"
)

// StageSummarizing is reported to a progress hook once text acquisition is
// done.
const StageSummarizing = "summarizing"

type progressKey struct{}

// WithProgress attaches a hook that Analyze calls as it moves between stages.
func WithProgress(ctx context.Context, fn func(stage string)) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progress(ctx context.Context, stage string) {
	if fn, ok := ctx.Value(progressKey{}).(func(string)); ok && fn != nil {
		fn(stage)
	}
}

// Options wires an Analyzer. Nil fields get defaults: built-in rules, the
// lead summarizer, no metrics, and slog.Default.
type Options struct {
	Rules          *casesheet.Rules
	Summarizer     summarize.Summarizer
	SummarizerName string
	Parser         parser.Options
	Metrics        *metrics.Metrics
	Stats          *Stats
	Logger         *slog.Logger
}

// Analyzer turns case sheet files into reports. It is safe for concurrent use.
type Analyzer struct {
	rules      *casesheet.Rules
	summarizer summarize.Summarizer
	name       string
	fallback   summarize.Summarizer
	parseOpts  parser.Options
	metrics    *metrics.Metrics
	stats      *Stats
	log        *slog.Logger
}

// New returns an Analyzer.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		rules:      opts.Rules,
		summarizer: opts.Summarizer,
		name:       opts.SummarizerName,
		fallback:   summarize.NewLead(0),
		parseOpts:  opts.Parser,
		metrics:    opts.Metrics,
		stats:      opts.Stats,
		log:        opts.Logger,
	}
	if a.rules == nil {
		a.rules = casesheet.DefaultRules()
	}
	if a.summarizer == nil {
		a.summarizer = a.fallback
		a.name = summarize.KindLead
	}
	if a.name == "" {
		a.name = "custom"
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	return a
}

// Rules returns the vocabulary in use.
func (a *Analyzer) Rules() *casesheet.Rules { return a.rules }

// Parse acquires the text of one file.
func (a *Analyzer) Parse(ctx context.Context, filename string, data []byte) (*document.Document, error) {
	return parser.Parse(ctx, bytes.NewReader(data), filename, a.parseOpts)
}

// Sections parses and filters a file and returns its sections.
func (a *Analyzer) Sections(ctx context.Context, filename string, data []byte) (casesheet.Sections, error) {
	doc, err := a.Parse(ctx, filename, data)
	if err != nil {
		return casesheet.Sections{}, err
	}
	return a.rules.SplitSections(a.rules.FilterLines(doc.Text())), nil
}

// Analyze runs the whole pipeline on one file.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte) (*casesheet.Report, error) {
	start := time.Now()
	log := a.log.With("filename", filename)

	doc, err := a.Parse(ctx, filename, data)
	if err != nil {
		a.observe(start, "", err)
		log.Warn("parse failed", "error", err)
		return nil, err
	}
	progress(ctx, StageSummarizing)
	if doc.Source == document.SourceOCR && a.metrics != nil {
		a.metrics.OCRPagesTotal.Add(float64(len(doc.Pages)))
	}

	report, err := a.AnalyzeText(ctx, filename, doc.Text(), doc.Source)
	a.observe(start, doc.Source, err)
	if err != nil {
		log.Warn("analysis failed", "error", err)
		return nil, err
	}
	log.Info("analysis complete",
		"source", doc.Source,
		"pages", doc.PageCount,
		"sections", len(report.Sections),
		"polarity", report.Polarity,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// AnalyzeText runs everything after text acquisition. Empty text yields a
// report whose summary is the too-short message.
func (a *Analyzer) AnalyzeText(ctx context.Context, filename, raw, source string) (*casesheet.Report, error) {
	if source == "" {
		source = document.SourceText
	}
	text := a.rules.FilterLines(strings.ToValidUTF8(raw, ""))
	sections := a.rules.SplitSections(text)

	report := &casesheet.Report{Filename: filename, Source: source}

	for _, name := range a.rules.SummaryOrder {
		content, ok := sections.Get(name)
		if !ok || content == "" {
			continue
		}
		summary, err := a.summarize(ctx, a.rules.FilterLines(content))
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		report.Sections = append(report.Sections, casesheet.SectionSummary{Name: name, Summary: summary})
	}

	if len(report.Sections) == 0 {
		summary, err := a.summarize(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		report.Fallback = summary
	}

	cond := topics.Extract(text)
	report.Condition = &cond

	report.Polarity = sentiment.Polarity(text)
	if !a.rules.HasPlan(sections) {
		report.Suggestion = a.rules.SuggestionFor(report.Polarity)
	}
	report.State = a.rules.StateFor(text)
	report.Status = a.rules.StatusFor(report.Polarity)
	return report, nil
}

// summarize runs the configured summarizer and falls back to the lead
// summary when a non-lead summarizer fails. Context errors are returned.
func (a *Analyzer) summarize(ctx context.Context, text string) (string, error) {
	out, err := a.summarizer.Summarize(ctx, text)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil || a.summarizer == a.fallback {
		return "", err
	}
	if a.metrics != nil {
		a.metrics.SummarizerErrors.WithLabelValues(a.name).Inc()
	}
	a.log.Warn("summarizer failed, using lead summary", "summarizer", a.name, "error", err)
	return a.fallback.Summarize(ctx, text)
}

func (a *Analyzer) observe(start time.Time, source string, err error) {
	elapsed := time.Since(start)
	if a.stats != nil {
		a.stats.Record(source, elapsed, err != nil)
	}
	if a.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		a.metrics.AnalysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
}
