// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires the handler and middleware stack into the route tree.
type Router struct {
	Handler    *Handler
	Middleware MiddlewareConfig
}

// Setup builds the full route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.Middleware.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.Middleware.RateLimit())
		r.Use(HTTPMetrics())

		r.Get("/health", rt.Handler.Health)
		r.Get("/salespeople", rt.Handler.Salespeople)
		r.Get("/dashboard", rt.Handler.DashboardLoad)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/sales", rt.Handler.AnalyticsSales)
			r.Get("/leads", rt.Handler.AnalyticsLeads)
			r.Get("/clients", rt.Handler.AnalyticsClients)
			r.Get("/payments", rt.Handler.AnalyticsPayments)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", rt.Handler.CacheStats)
			r.Post("/clear", rt.Handler.CacheClear)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
