// Package server provides HTTP server management and lifecycle handling
// for the medicaments assistant. It includes server setup, middleware
// configuration, route management, and graceful shutdown with proper
// error handling and logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/giygas/medicaments-assistant/assistant"
	"github.com/giygas/medicaments-assistant/config"
	"github.com/giygas/medicaments-assistant/handlers"
	"github.com/giygas/medicaments-assistant/interfaces"
	"github.com/giygas/medicaments-assistant/logging"
	"github.com/giygas/medicaments-assistant/metrics"
	"github.com/giygas/medicaments-assistant/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps collects everything the HTTP layer needs from the rest of the
// application.
type Deps struct {
	DataStore     interfaces.DataStore
	Synthesizer   *assistant.Synthesizer
	Retriever     *search.Retriever
	Validator     interfaces.QueryValidator
	HealthChecker interfaces.HealthChecker
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router chi.Router
	deps   Deps
	config *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		deps:   deps,
		config: cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Post("/ask", handlers.Ask(s.deps.DataStore, s.deps.Synthesizer))
	s.router.Get("/search/{query}", handlers.SearchMedicaments(s.deps.DataStore, s.deps.Retriever, s.deps.Validator))
	s.router.Get("/medicament/{code}", handlers.FindMedicamentByCIS(s.deps.DataStore))
	s.router.Get("/health", handlers.HealthCheck(s.deps.DataStore, s.deps.HealthChecker))
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		handlers.RespondWithJSON(w, http.StatusOK, map[string]any{
			"name": "medicaments-assistant",
			"endpoints": []string{
				"POST /ask",
				"GET /search/{query}",
				"GET /medicament/{code}",
				"GET /health",
				"GET /metrics",
			},
		})
	})
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
