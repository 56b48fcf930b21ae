// Command server runs the casesheet web application.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/casesheet/internal/analyze"
	"github.com/dgallion1/casesheet/internal/api"
	"github.com/dgallion1/casesheet/internal/config"
	"github.com/dgallion1/casesheet/internal/metrics"
	"github.com/dgallion1/casesheet/internal/pipeline"
	"github.com/dgallion1/casesheet/internal/store"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "casesheet-server",
	Short:        "Serve the casesheet web application",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: loaded.SlogLevel()}))
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", os.Getenv("CASESHEET_CONFIG"), "optional YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("casesheet-server", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}

	m := metrics.New()
	stats := analyze.NewStats(time.Hour)
	analyzer, err := analyze.FromConfig(cfg, m, stats, log)
	if err != nil {
		db.Close()
		return fmt.Errorf("build analyzer: %w", err)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Config{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
	}, analyzer, db, m, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, db, m, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // OCR on long scans runs inside the upload request
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		analyzer.Close()
		db.Close()
	}()

	log.Info("starting casesheet",
		"port", cfg.Port,
		"summarizer", cfg.Summarizer,
		"workers", cfg.WorkerCount,
		"allowed_extensions", cfg.AllowedExtensions,
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-done
		return fmt.Errorf("listen: %w", err)
	}
	<-done
	return nil
}
