// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package cache

import (
	"fmt"
	"time"

	"github.com/tallyboard/tallyboard/internal/models"
)

// Key derivation: one pure function per aggregate family, mapping the
// filter tuple to a deterministic string. Identical tuples always yield
// identical keys across calls and restarts, so each Store is an
// exact-match memoizer.
//
// Staleness policy (one control per aggregate, never both):
//   - Leads, clients, payments: TTL-only keys. The cache TTL is the sole
//     staleness bound.
//   - Sales rollup and salespeople directory: day-bucketed keys carrying
//     the clock's calendar date, paired with a long TTL. The day bucket
//     forces at most one fetch per calendar day; the TTL only bounds
//     memory. Cross-day calls with otherwise identical filters yield
//     different keys.
//
// All key functions expect a Normalized filter; callers normalize first
// so a fully-defaulted filter and an explicit current-period filter
// share a key.

// dayBucket formats the calendar-day component of day-bucketed keys.
func dayBucket(now time.Time) string {
	return now.Format("2006-01-02")
}

func monthPart(f models.FilterState) string {
	if f.Month == nil {
		return models.All
	}
	return fmt.Sprintf("%d", *f.Month)
}

func yearPart(f models.FilterState) string {
	if f.Year == nil {
		return models.All
	}
	return fmt.Sprintf("%d", *f.Year)
}

func rangePart(f models.FilterState) string {
	if !f.HasDateRange() {
		return "norange"
	}
	return f.StartDate + ".." + f.EndDate
}

// LeadsKey derives the TTL-only key for the lead analytics aggregate.
func LeadsKey(f models.FilterState) string {
	return fmt.Sprintf("leads|sp=%s|%s", f.SalespersonOrAll(), rangePart(f))
}

// ClientsKey derives the TTL-only key for the client analytics
// aggregate. topN participates because the advocate ranking depth
// changes the aggregate's value.
func ClientsKey(f models.FilterState, topN int) string {
	return fmt.Sprintf("clients|sp=%s|%s|top=%d", f.SalespersonOrAll(), rangePart(f), topN)
}

// PaymentsKey derives the TTL-only key for the payment analytics
// aggregate.
func PaymentsKey(f models.FilterState) string {
	return fmt.Sprintf("payments|sp=%s|%s", f.SalespersonOrAll(), rangePart(f))
}

// SalesKey derives the day-bucketed key for the sales/target rollup.
func SalesKey(now time.Time, f models.FilterState) string {
	return fmt.Sprintf("sales|m=%s|y=%s|sp=%s|d=%s",
		monthPart(f), yearPart(f), f.SalespersonOrAll(), dayBucket(now))
}

// SalespeopleKey derives the day-bucketed key for the salespeople
// directory list.
func SalespeopleKey(now time.Time) string {
	return "salespeople|d=" + dayBucket(now)
}
