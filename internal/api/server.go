package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for docoutline.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	resolver     *pipeline.Resolver
	analyzer     *persona.Analyzer
	embedder     *embed.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. embedder may be nil
// when no semantic scorer is configured.
func NewServer(orch *pipeline.Orchestrator, resolver *pipeline.Resolver, analyzer *persona.Analyzer, embedder *embed.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		resolver:     resolver,
		analyzer:     analyzer,
		embedder:     embedder,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/outline/jobs", s.handleOutlineJobs)
		r.Get("/api/outline/jobs/{jobID}", s.handleOutlineJobStatus)
		r.Post("/api/analyze-persona", s.handleAnalyzePersona)
		r.Get("/api/stats/embed", s.handleEmbedStats)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{filename}", s.handleGetDocument)
		r.Delete("/api/documents/{filename}", s.handleDeleteDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
