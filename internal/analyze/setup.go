package analyze

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/casesheet/internal/casesheet"
	"github.com/dgallion1/casesheet/internal/config"
	"github.com/dgallion1/casesheet/internal/metrics"
	"github.com/dgallion1/casesheet/internal/ocr"
	"github.com/dgallion1/casesheet/internal/parser"
	"github.com/dgallion1/casesheet/internal/summarize"
)

// FromConfig builds an Analyzer from runtime settings. OCR is left off,
// with a warning, when the binaries are missing.
func FromConfig(cfg config.Config, m *metrics.Metrics, stats *Stats, log *slog.Logger) (*Analyzer, error) {
	rules, err := casesheet.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	sum, err := summarize.New(cfg.Summarizer, summarize.Config{
		Sentences: cfg.SummarySentences,
		Ratio:     cfg.SummaryRatio,
		URL:       cfg.InferenceURL,
		APIKey:    cfg.InferenceAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	popts := parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext}
	if cfg.OCREnabled {
		engine := ocr.NewEngine(log.With("component", "ocr"))
		engine.DPI = cfg.OCRDPI
		engine.Preprocess = cfg.OCRPreprocess
		engine.Concurrency = cfg.OCRConcurrency
		if err := engine.Available(); err != nil {
			log.Warn("ocr disabled", "error", err)
		} else {
			popts.OCR = engine
		}
	}

	return New(Options{
		Rules:          rules,
		Summarizer:     sum,
		SummarizerName: cfg.Summarizer,
		Parser:         popts,
		Metrics:        m,
		Stats:          stats,
		Logger:         log,
	}), nil
}

// Close releases summarizer resources.
func (a *Analyzer) Close() {
	if c, ok := a.summarizer.(interface{ Close() }); ok {
		c.Close()
	}
}
