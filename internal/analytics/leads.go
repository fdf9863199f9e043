// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/metrics"
	"github.com/tallyboard/tallyboard/internal/models"
)

// LeadService aggregates lead documents into the source/status
// distribution. Keys are TTL-only: lead volume is volatile, so the
// cache TTL is the sole staleness bound.
type LeadService struct {
	service
}

// NewLeadService creates the lead analytics service.
func NewLeadService(o Options) *LeadService {
	s := &LeadService{}
	s.init(DomainLeads, o)
	return s
}

// Load returns the lead aggregate for the filter state. It never
// returns an error: failures resolve to a zeroed aggregate.
func (s *LeadService) Load(ctx context.Context, f models.FilterState) *models.LeadAnalytics {
	defer s.complete()

	f = f.Normalized(s.clock.Now())
	key := cache.LeadsKey(f)
	s.state.set(StateKeyComputed)

	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(s.cache.Name())
		s.state.set(StateCacheHit)
		s.state.set(StateDone)
		return v.(*models.LeadAnalytics)
	}
	metrics.RecordCacheMiss(s.cache.Name())
	s.state.set(StateCacheMiss)

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.loadMiss(ctx, f, key), nil
	})
	s.state.set(StateDone)
	return v.(*models.LeadAnalytics)
}

func (s *LeadService) loadMiss(ctx context.Context, f models.FilterState, key string) *models.LeadAnalytics {
	s.state.set(StateFetching)

	docs, err := s.fetchAll(ctx, models.CollectionLeads, rangePredicates(f))
	if err != nil {
		s.log.Error().Err(err).Msg("Leads fetch failed, serving zeroed aggregate")
		metrics.RecordAggregationFailure(s.domain)
		agg := emptyLeads()
		s.state.set(StateCached)
		s.put(key, agg)
		return agg
	}

	s.state.set(StateReducing)
	phase := s.domain + ".reduce"
	s.perf.Start(phase)
	agg := reduceLeads(docs)
	metrics.RecordReduce(s.domain, s.perf.End(phase))

	s.state.set(StateCached)
	s.put(key, agg)
	return agg
}

// emptyLeads returns the zeroed aggregate with the source enum
// zero-filled.
func emptyLeads() *models.LeadAnalytics {
	return &models.LeadAnalytics{
		SourceTotals:       models.NewSourceTotals(),
		StatusDistribution: models.StatusDistribution{},
	}
}

// reduceLeads folds lead documents into the source/status cross tab in
// a single pass. Every document increments the top-level total;
// documents without a recognized source are excluded from per-source
// buckets, and a missing status lands in the No Status sentinel so the
// per-source column sums stay equal to the source totals.
func reduceLeads(docs [][]byte) *models.LeadAnalytics {
	agg := emptyLeads()

	for _, raw := range docs {
		agg.TotalLeads++

		var l models.Lead
		if err := json.Unmarshal(raw, &l); err != nil {
			continue
		}

		src := normalizeSource(l.Source)
		if src == "" {
			continue
		}
		agg.SourceTotals[src]++

		status := strings.TrimSpace(l.Status)
		if status == "" {
			status = models.NoStatus
		}
		row, ok := agg.StatusDistribution[status]
		if !ok {
			row = models.NewSourceTotals()
			agg.StatusDistribution[status] = row
		}
		row[src]++
	}

	return agg
}

// normalizeSource maps a raw source value onto the fixed enum, or ""
// when unrecognized.
func normalizeSource(source string) string {
	source = strings.ToLower(strings.TrimSpace(source))
	for _, s := range models.Sources {
		if source == s {
			return s
		}
	}
	return ""
}
