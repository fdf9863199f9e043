// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package analytics implements the aggregation core: one service per
// dashboard domain (sales, leads, clients, payments), each reducing
// full-collection document scans into a fixed-shape aggregate memoized
// in a TTL cache keyed by filter state.
//
// Every service follows the same contract:
//
//  1. Derive the cache key from normalized filter state.
//  2. On hit, return the cached aggregate without touching the store.
//  3. On miss, fetch through the Querier, reduce in a single pass,
//     derive zero-safe rates, and cache the result.
//  4. Concurrent loads for the same key share one in-flight scan
//     (singleflight).
//  5. Failures are swallowed: a failed fetch or reduction resolves to a
//     zeroed aggregate of the correct shape, which is cached so the only
//     retry paths are a filter change or an explicit cache clear. The
//     completion callback fires exactly once per load either way.
package analytics

import (
	"math"
	"time"

	"github.com/tallyboard/tallyboard/internal/models"
	"github.com/tallyboard/tallyboard/internal/store"
)

// Analytics domains, used as metric labels and log fields.
const (
	DomainSales       = "sales"
	DomainLeads       = "leads"
	DomainClients     = "clients"
	DomainPayments    = "payments"
	DomainSalespeople = "salespeople"
)

// rate computes round(n/d*100) as an integer percentage. A zero
// denominator yields exactly 0, never NaN or Inf.
func rate(n, d float64) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(n / d * 100))
}

// safeDiv divides n by d, returning 0 on a zero denominator.
func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// emptyMonthlySeries builds the fixed-length trailing monthly series:
// exactly MonthlySeriesLen points ending at now's month, most-recent-
// last, zero-filled.
func emptyMonthlySeries(now time.Time) []models.MonthlyPoint {
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.MonthlyPoint, models.MonthlySeriesLen)
	for i := range pts {
		m := anchor.AddDate(0, i-(models.MonthlySeriesLen-1), 0)
		pts[i] = models.MonthlyPoint{Month: m.Format("Jan 2006")}
	}
	return pts
}

// monthIndex maps a (year, month) onto the trailing series index, or -1
// when the month falls outside the window.
func monthIndex(now time.Time, year int, month time.Month) int {
	diff := (now.Year()-year)*12 + int(now.Month()) - int(month)
	idx := models.MonthlySeriesLen - 1 - diff
	if idx < 0 || idx >= models.MonthlySeriesLen {
		return -1
	}
	return idx
}

// sameMonth reports whether t falls in now's calendar month.
func sameMonth(t, now time.Time) bool {
	return t.Year() == now.Year() && t.Month() == now.Month()
}

// rangePredicates translates filter state into store predicates: an
// applied date range becomes inclusive bounds on the timestamp field, a
// selected salesperson an equality on the assignee field.
func rangePredicates(f models.FilterState) []store.Predicate {
	var preds []store.Predicate
	if f.HasSalesperson() {
		preds = append(preds, store.Eq(models.FieldAssignedTo, f.Salesperson))
	}
	if f.HasDateRange() {
		if start, err := time.Parse("2006-01-02", f.StartDate); err == nil {
			preds = append(preds, store.Gte(models.FieldTimestamp, start))
		}
		if end, err := time.Parse("2006-01-02", f.EndDate); err == nil {
			// Inclusive upper bound covering the whole end day.
			preds = append(preds, store.Lte(models.FieldTimestamp, end.AddDate(0, 0, 1).Add(-time.Nanosecond)))
		}
	}
	return preds
}
