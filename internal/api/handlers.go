// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package api provides HTTP routing and handlers for the analytics
// dashboard using the Chi router.
package api

import (
	"net/http"
	"time"

	"github.com/tallyboard/tallyboard/internal/analytics"
	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/models"
	"github.com/tallyboard/tallyboard/internal/orchestrator"
)

// Handler owns the analytics services and the caches behind them.
type Handler struct {
	Sales     *analytics.SalesService
	Leads     *analytics.LeadService
	Clients   *analytics.ClientService
	Payments  *analytics.PaymentService
	Directory *analytics.DirectoryService
	Dashboard *orchestrator.Dashboard

	// Caches are surfaced by the cache admin endpoints.
	Caches []*cache.Store
}

// AnalyticsSales returns the sales/target rollup.
//
// Method: GET
// Path: /api/v1/analytics/sales
func (h *Handler) AnalyticsSales(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error(), err)
		return
	}
	respondSuccess(w, h.Sales.Load(r.Context(), f), start)
}

// AnalyticsLeads returns the lead source/status distribution.
//
// Method: GET
// Path: /api/v1/analytics/leads
func (h *Handler) AnalyticsLeads(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error(), err)
		return
	}
	respondSuccess(w, h.Leads.Load(r.Context(), f), start)
}

// AnalyticsClients returns the client-book aggregate. With
// first_paint=true the response is the first-batch partial aggregate,
// for fast initial render.
//
// Method: GET
// Path: /api/v1/analytics/clients
func (h *Handler) AnalyticsClients(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error(), err)
		return
	}
	if r.URL.Query().Get("first_paint") == "true" {
		var partial *models.ClientAnalytics
		h.Clients.LoadProgressive(r.Context(), f, func(p *models.ClientAnalytics) {
			partial = p
			respondSuccess(w, p, start)
		})
		if partial == nil {
			respondSuccess(w, h.Clients.Load(r.Context(), f), start)
		}
		return
	}
	respondSuccess(w, h.Clients.Load(r.Context(), f), start)
}

// AnalyticsPayments returns the collections aggregate. With
// first_paint=true the response is an uncached first-batch partial.
//
// Method: GET
// Path: /api/v1/analytics/payments
func (h *Handler) AnalyticsPayments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error(), err)
		return
	}
	if r.URL.Query().Get("first_paint") == "true" {
		respondSuccess(w, h.Payments.LoadFirstPaint(r.Context(), f), start)
		return
	}
	respondSuccess(w, h.Payments.Load(r.Context(), f), start)
}

// Salespeople returns the name-sorted salesperson directory.
//
// Method: GET
// Path: /api/v1/salespeople
func (h *Handler) Salespeople(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.Directory.Load(r.Context()), start)
}

// DashboardLoad runs the staged load across all four domains and
// returns the combined response.
//
// Method: GET
// Path: /api/v1/dashboard
func (h *Handler) DashboardLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error(), err)
		return
	}
	respondSuccess(w, h.Dashboard.Load(r.Context(), f), start)
}

// CacheStats reports per-cache entry counts and hit rates.
//
// Method: GET
// Path: /api/v1/cache/stats
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rows := make([]models.CacheStats, 0, len(h.Caches))
	for _, c := range h.Caches {
		s := c.GetStats()
		rows = append(rows, models.CacheStats{
			Name:      c.Name(),
			Entries:   c.Len(),
			Hits:      s.Hits,
			Misses:    s.Misses,
			Evictions: s.Evictions,
			HitRate:   c.HitRate(),
		})
	}
	respondSuccess(w, rows, start)
}

// CacheClear drops every cached aggregate. The next load of each domain
// refetches from the store.
//
// Method: POST
// Path: /api/v1/cache/clear
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	for _, c := range h.Caches {
		c.Clear()
	}
	respondSuccess(w, map[string]int{"cleared": len(h.Caches)}, start)
}

// Health reports liveness.
//
// Method: GET
// Path: /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, map[string]string{"status": "ok"}, start)
}
