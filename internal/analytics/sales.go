// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/metrics"
	"github.com/tallyboard/tallyboard/internal/models"
	"github.com/tallyboard/tallyboard/internal/store"
)

// salesPredicates translates the filter into target-collection
// predicates. The month/year split happens in the reduction because the
// trailing revenue series needs documents from all months.
func salesPredicates(f models.FilterState) []store.Predicate {
	var preds []store.Predicate
	if f.HasSalesperson() {
		preds = append(preds, store.Eq(models.FieldAssignedTo, f.Salesperson))
	}
	return preds
}

// SalesService aggregates monthly sales targets into the target/revenue
// rollup. Its cache key is day-bucketed: the rollup changes at most
// daily, so one fetch per calendar day suffices and the cache TTL only
// bounds memory.
type SalesService struct {
	service
}

// NewSalesService creates the sales analytics service.
func NewSalesService(o Options) *SalesService {
	s := &SalesService{}
	s.init(DomainSales, o)
	return s
}

// Load returns the sales aggregate for the filter state. It never
// returns an error: failures resolve to a zeroed aggregate.
func (s *SalesService) Load(ctx context.Context, f models.FilterState) *models.SalesAnalytics {
	defer s.complete()

	now := s.clock.Now()
	f = f.Normalized(now)
	key := cache.SalesKey(now, f)
	s.state.set(StateKeyComputed)

	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(s.cache.Name())
		s.state.set(StateCacheHit)
		s.state.set(StateDone)
		return v.(*models.SalesAnalytics)
	}
	metrics.RecordCacheMiss(s.cache.Name())
	s.state.set(StateCacheMiss)

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.loadMiss(ctx, f, key, now), nil
	})
	s.state.set(StateDone)
	return v.(*models.SalesAnalytics)
}

func (s *SalesService) loadMiss(ctx context.Context, f models.FilterState, key string, now time.Time) *models.SalesAnalytics {
	s.state.set(StateFetching)

	docs, err := s.fetchAll(ctx, models.CollectionTargets, salesPredicates(f))
	if err != nil {
		s.log.Error().Err(err).Msg("Targets fetch failed, serving zeroed aggregate")
		metrics.RecordAggregationFailure(s.domain)
		agg := emptySales(now)
		s.state.set(StateCached)
		s.put(key, agg)
		return agg
	}

	s.state.set(StateReducing)
	phase := s.domain + ".reduce"
	s.perf.Start(phase)
	agg := reduceSales(docs, f, now)
	metrics.RecordReduce(s.domain, s.perf.End(phase))

	s.state.set(StateCached)
	s.put(key, agg)
	return agg
}

// emptySales returns the zeroed aggregate of the correct shape,
// including the fully-labeled monthly series.
func emptySales(now time.Time) *models.SalesAnalytics {
	return &models.SalesAnalytics{MonthlyRevenue: emptyMonthlySeries(now)}
}

// reduceSales folds target documents into the rollup in a single pass.
// Period totals come from documents matching the filter's month/year;
// the trailing revenue series accumulates every document inside its
// six-month window regardless of the selected period.
func reduceSales(docs [][]byte, f models.FilterState, now time.Time) *models.SalesAnalytics {
	agg := emptySales(now)
	var convertedLeads, totalLeads int

	for _, raw := range docs {
		var t models.SalesTarget
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}

		collected, _ := ParseAmount(t.Collected)

		if f.Month != nil && f.Year != nil && t.Month == *f.Month && t.Year == *f.Year {
			target, _ := ParseAmount(t.TargetAmount)
			agg.TotalTargetAmount += target
			agg.TotalCollectedAmount += collected
			convertedLeads += t.ConvertedLeads
			totalLeads += t.TotalLeads
		}

		if idx := monthIndex(now, t.Year, time.Month(t.Month)); idx >= 0 {
			agg.MonthlyRevenue[idx].Amount += collected
		}
	}

	agg.ConversionRate = rate(float64(convertedLeads), float64(totalLeads))
	agg.AvgDealSize = safeDiv(agg.TotalCollectedAmount, float64(convertedLeads))
	return agg
}
