// Package api exposes the engine's ops HTTP surface. The engine is queue
// driven; these endpoints exist only for health probes and operators.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/invest-earning/event-engine/internal/api/handlers"
	custommiddleware "github.com/invest-earning/event-engine/internal/api/middleware"
	"github.com/invest-earning/event-engine/internal/config"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemHandler *handlers.SystemHandler, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/status", systemHandler.Status)
		})
	})

	return r
}
