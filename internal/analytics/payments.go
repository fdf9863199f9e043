// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/metrics"
	"github.com/tallyboard/tallyboard/internal/models"
)

// PaymentService aggregates payment documents into the collections
// rollup. The default mode is a full scan; LoadFirstPaint is the opt-in
// partial-scan mode for fast first paint, whose result is marked
// Partial and never cached.
type PaymentService struct {
	service
	batchSize int
}

// NewPaymentService creates the payment analytics service. batchSize
// sizes the first-paint partial scan; zero selects the default.
func NewPaymentService(o Options, batchSize int) *PaymentService {
	if batchSize <= 0 {
		batchSize = DefaultPartialBatch
	}
	s := &PaymentService{batchSize: batchSize}
	s.init(DomainPayments, o)
	return s
}

// Load returns the payment aggregate for the filter state. It never
// returns an error: failures resolve to a zeroed aggregate.
func (s *PaymentService) Load(ctx context.Context, f models.FilterState) *models.PaymentAnalytics {
	defer s.complete()

	now := s.clock.Now()
	f = f.Normalized(now)
	key := cache.PaymentsKey(f)
	s.state.set(StateKeyComputed)

	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(s.cache.Name())
		s.state.set(StateCacheHit)
		s.state.set(StateDone)
		return v.(*models.PaymentAnalytics)
	}
	metrics.RecordCacheMiss(s.cache.Name())
	s.state.set(StateCacheMiss)

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.loadMiss(ctx, f, key, now), nil
	})
	s.state.set(StateDone)
	return v.(*models.PaymentAnalytics)
}

// LoadFirstPaint reduces only the first batch of matching payments so
// the dashboard can render before the full scan finishes. The result
// goes through the same reducer as the full aggregate and is marked
// Partial; it is not cached, so a follow-up Load still performs (or
// joins) the full scan.
func (s *PaymentService) LoadFirstPaint(ctx context.Context, f models.FilterState) *models.PaymentAnalytics {
	now := s.clock.Now()
	f = f.Normalized(now)

	batch, err := s.querier.FetchLimit(ctx, models.CollectionPayments, rangePredicates(f), s.batchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("Payments first-paint fetch failed, serving zeroed aggregate")
		metrics.RecordAggregationFailure(s.domain)
		agg := emptyPayments(now)
		agg.Partial = true
		return agg
	}
	return reducePayments(batch, now, true)
}

func (s *PaymentService) loadMiss(ctx context.Context, f models.FilterState, key string, now time.Time) *models.PaymentAnalytics {
	s.state.set(StateFetching)

	docs, err := s.fetchAll(ctx, models.CollectionPayments, rangePredicates(f))
	if err != nil {
		s.log.Error().Err(err).Msg("Payments fetch failed, serving zeroed aggregate")
		metrics.RecordAggregationFailure(s.domain)
		agg := emptyPayments(now)
		s.state.set(StateCached)
		s.put(key, agg)
		return agg
	}

	s.state.set(StateReducing)
	phase := s.domain + ".reduce"
	s.perf.Start(phase)
	agg := reducePayments(docs, now, false)
	metrics.RecordReduce(s.domain, s.perf.End(phase))

	s.state.set(StateCached)
	s.put(key, agg)
	return agg
}

// emptyPayments returns the zeroed aggregate of the correct shape.
func emptyPayments(now time.Time) *models.PaymentAnalytics {
	return &models.PaymentAnalytics{
		MethodDistribution: map[string]int{},
		TypeDistribution:   map[string]int{},
		MonthlyCollection:  emptyMonthlySeries(now),
	}
}

// reducePayments folds payment documents into the collections rollup in
// a single pass. The current-month split is scoped strictly to now's
// calendar month.
func reducePayments(docs [][]byte, now time.Time, partial bool) *models.PaymentAnalytics {
	agg := emptyPayments(now)
	agg.Partial = partial

	for _, raw := range docs {
		agg.TotalPayments++

		var p models.Payment
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}

		total, _ := ParseAmount(p.TotalAmount)
		paid, _ := ParseAmount(p.PaidAmount)
		agg.TotalAmount += total
		agg.PaidAmount += paid

		bump(agg.MethodDistribution, strings.ToLower(p.Method), "unknown")
		bump(agg.TypeDistribution, normalizePaymentType(p.Type), "unknown")

		if idx := monthIndex(now, p.Timestamp.Year(), p.Timestamp.Month()); idx >= 0 {
			agg.MonthlyCollection[idx].Amount += paid
		}
		if sameMonth(p.Timestamp, now) {
			agg.CurrentMonth.Collected += paid
			agg.CurrentMonth.Pending += total - paid
		}
	}

	agg.PendingAmount = agg.TotalAmount - agg.PaidAmount
	agg.CompletionRate = rate(agg.PaidAmount, agg.TotalAmount)
	return agg
}

// normalizePaymentType collapses the full/partial flag; anything else
// falls through to the unknown bucket.
func normalizePaymentType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "full" || t == "partial" {
		return t
	}
	return ""
}
