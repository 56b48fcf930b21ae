// Package api serves the web pages and JSON endpoints.
package api

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/casesheet/internal/analyze"
	"github.com/dgallion1/casesheet/internal/auth"
	"github.com/dgallion1/casesheet/internal/config"
	"github.com/dgallion1/casesheet/internal/metrics"
	"github.com/dgallion1/casesheet/internal/pipeline"
	"github.com/dgallion1/casesheet/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Store is the persistence the handlers need.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error)
	UserByName(ctx context.Context, username string) (*store.User, error)
	ListSummaries(ctx context.Context, userID int64, limit int) ([]store.Summary, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP server for casesheet.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        Store
	metrics      *metrics.Metrics
	stats        *analyze.Stats
	tmpl         *template.Template
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, st Store, m *metrics.Metrics, stats *analyze.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        st,
		metrics:      m,
		stats:        stats,
		tmpl:         template.Must(template.ParseFS(templateFS, "templates/*.html")),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(auth.Middleware([]byte(s.cfg.SessionSecret)))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)

	// Pages: unauthenticated users are sent to /login.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", s.handleIndex)
		r.Get("/logout", s.handleLogout)
		r.Get("/history", s.handleHistory)
	})

	// JSON endpoints: unauthenticated users get 401.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuthJSON)
		r.Post("/upload", s.handleUpload)
		r.Get("/api/summaries", s.handleListSummaries)
		r.Post("/api/jobs", s.handleSubmitJobs)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("health check failed", "error", err)
		jsonError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
