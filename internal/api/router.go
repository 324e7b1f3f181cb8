// Package api wires the operator-facing HTTP surface.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linkgrab/linkgrab/internal/api/handler"
	mw "github.com/linkgrab/linkgrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	healthHandler *handler.HealthHandler,
	linkHandler *handler.LinkHandler,
	mediaHandler *handler.MediaHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(time.Minute))

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", linkHandler.Stats)
		r.Get("/links", linkHandler.List)
		r.Get("/links/lookup", linkHandler.Lookup)
		r.Get("/media/*", mediaHandler.Serve)
	})

	return r
}
