// Package api exposes summarization jobs over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docsumm/internal/config"
	"github.com/dgallion1/docsumm/internal/llm"
	"github.com/dgallion1/docsumm/internal/pipeline"
)

// Jobs is the part of the orchestrator the API needs.
type Jobs interface {
	Submit(job *pipeline.Job) error
	GetJob(id string) *pipeline.Job
	QueueDepth() int
	Stats() *llm.LLMStats
}

// Server is the HTTP API server for docsumm.
type Server struct {
	router chi.Router
	jobs   Jobs
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(jobs Jobs, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		jobs: jobs,
		log:  log,
		cfg:  cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocsummAPIKey, s.log))

		r.Post("/api/summarize", s.handleSummarize)
		r.Post("/api/summarize/batch", s.handleBatchSummarize)

		r.Route("/api/jobs/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleJobStatus)
			r.Post("/cancel", s.handleJobCancel)
			r.Get("/result", s.handleJobResult)
		})

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.jobs.QueueDepth(),
	})
}
