// Package config loads runtime settings from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgallion1/casesheet/internal/summarize"
)

const (
	defaultPort           = "5000"
	defaultMaxUploadBytes = 16 << 20 // 16MB
	defaultWorkers        = 2
	defaultQueueSize      = 100
	defaultJobTTL         = time.Hour
	defaultSentences      = 5
	defaultRatio          = 0.3
	defaultOCRDPI         = 300
	defaultOCRConcurrency = 4
)

type Config struct {
	Port string

	// Storage
	DatabasePath string

	// Sessions
	SessionSecret string
	SecureCookies bool

	// Upload limits
	MaxUploadBytes    int64
	AllowedExtensions []string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Summaries
	Summarizer       string
	SummarySentences int
	SummaryRatio     float64
	InferenceURL     string
	InferenceAPIKey  string

	// PDF and OCR
	PDFFallbackPdftotext bool
	OCREnabled           bool
	OCRDPI               int
	OCRPreprocess        bool
	OCRConcurrency       int

	RulesPath string
	LogLevel  string
}

// Load reads settings from the environment, overlaid on path when non-empty.
// Environment variables win over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Port: v.GetString("port"),

		DatabasePath: v.GetString("database_path"),

		SessionSecret: v.GetString("session_secret"),
		SecureCookies: v.GetBool("secure_cookies"),

		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
		AllowedExtensions: normalizeExts(v.GetStringSlice("allowed_extensions")),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),
		JobTTL:       v.GetDuration("job_ttl"),

		Summarizer:       strings.ToLower(strings.TrimSpace(v.GetString("summarizer"))),
		SummarySentences: v.GetInt("summary_sentences"),
		SummaryRatio:     v.GetFloat64("summary_ratio"),
		InferenceURL:     v.GetString("inference_url"),
		InferenceAPIKey:  v.GetString("inference_api_key"),

		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),
		OCREnabled:           v.GetBool("ocr_enabled"),
		OCRDPI:               v.GetInt("ocr_dpi"),
		OCRPreprocess:        v.GetBool("ocr_preprocess"),
		OCRConcurrency:       v.GetInt("ocr_concurrency"),

		RulesPath: v.GetString("rules_path"),
		LogLevel:  v.GetString("log_level"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".pdf"}
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkers
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = defaultQueueSize
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = defaultJobTTL
	}
	if cfg.Summarizer == "" {
		cfg.Summarizer = summarize.KindLead
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = defaultSentences
	}
	if cfg.SummaryRatio <= 0 || cfg.SummaryRatio > 1 {
		cfg.SummaryRatio = defaultRatio
	}
	if cfg.OCRDPI <= 0 {
		cfg.OCRDPI = defaultOCRDPI
	}
	if cfg.OCRConcurrency <= 0 {
		cfg.OCRConcurrency = defaultOCRConcurrency
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", defaultPort)
	v.SetDefault("database_path", "data/casesheet.db")
	v.SetDefault("session_secret", "")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
	v.SetDefault("allowed_extensions", ".pdf")
	v.SetDefault("worker_count", defaultWorkers)
	v.SetDefault("max_queue_size", defaultQueueSize)
	v.SetDefault("job_ttl", defaultJobTTL)
	v.SetDefault("summarizer", summarize.KindLead)
	v.SetDefault("summary_sentences", defaultSentences)
	v.SetDefault("summary_ratio", defaultRatio)
	v.SetDefault("inference_url", summarize.DefaultInferenceURL)
	v.SetDefault("inference_api_key", "")
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("ocr_enabled", true)
	v.SetDefault("ocr_dpi", defaultOCRDPI)
	v.SetDefault("ocr_preprocess", false)
	v.SetDefault("ocr_concurrency", defaultOCRConcurrency)
	v.SetDefault("rules_path", "")
	v.SetDefault("log_level", "info")
}

// normalizeExts accepts ".pdf,.docx" or a YAML list and returns lower-case
// extensions with a leading dot.
func normalizeExts(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, e := range strings.Split(item, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			out = append(out, e)
		}
	}
	return out
}

// Validate checks settings the server cannot run without.
func (c Config) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}
	switch c.Summarizer {
	case summarize.KindLead, summarize.KindRank:
	case summarize.KindRemote:
		if c.InferenceAPIKey == "" {
			return errors.New("INFERENCE_API_KEY is required for the remote summarizer")
		}
	default:
		return fmt.Errorf("unknown SUMMARIZER %q", c.Summarizer)
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH is required")
	}
	return nil
}

// AllowsExtension reports whether ext (with dot, any case) may be uploaded.
func (c Config) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range c.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
