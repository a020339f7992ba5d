// Package api provides HTTP API server components.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scoutindex/scoutindex/config"
	"github.com/scoutindex/scoutindex/pkg/api/handlers"
	"github.com/scoutindex/scoutindex/pkg/api/middleware"
	"github.com/scoutindex/scoutindex/pkg/logger"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Search handles search endpoints.
	Search *handlers.SearchHandler

	// Document handles add-document endpoints.
	Document *handlers.DocumentHandler

	// Health handles health check endpoints.
	Health *handlers.HealthHandler

	// MetricsHandler serves the Prometheus scrape endpoint, when enabled.
	MetricsHandler http.Handler

	// Metrics is the optional HTTP middleware metrics recorder.
	Metrics middleware.MetricsRecorder
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	// Register global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	// Add metrics middleware if provided
	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}

	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.Timeout(cfg.Server.HTTP.RequestTimeout))

	RegisterRoutes(r, handlers)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, handlers *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		if handlers.Search != nil {
			r.Get("/search", handlers.Search.Search)
			r.Post("/search", handlers.Search.Search)
		}

		if handlers.Document != nil {
			r.Post("/documents", handlers.Document.AddDocument)
		}
	})

	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}

	if handlers.MetricsHandler != nil {
		r.Get("/metrics", handlers.MetricsHandler.ServeHTTP)
	}
}
