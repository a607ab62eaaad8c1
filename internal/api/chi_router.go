// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/watchstats/internal/middleware"
)

// Router binds handlers and middleware factories to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	sessions := h.sessions

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)        // X-Request-ID header and logging context
	r.Use(chimiddleware.RealIP)        // Client IP from X-Forwarded-For / X-Real-IP
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)

		// ========================
		// Open Endpoints
		// ========================
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/setup", h.SetupStatus)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/setup", h.Setup)

			r.Route("/auth", func(r chi.Router) {
				r.Get("/status", h.AuthStatus)
				r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
				r.Post("/logout", h.Logout)
			})
		})

		// ========================
		// Session Endpoints
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(sessions.RequireSession)

			r.Route("/stats", func(r chi.Router) {
				r.Use(chimiddleware.Compress(5, "application/json"))
				r.Get("/", h.Stats)
				r.Get("/watched/{kind}", h.Watched)
			})
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/rebuild", h.Rebuild)
		})
	})

	return r
}
