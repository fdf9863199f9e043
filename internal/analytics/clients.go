// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/metrics"
	"github.com/tallyboard/tallyboard/internal/models"
)

// DefaultTopAdvocates is the advocate-ranking depth used when none is
// configured.
const DefaultTopAdvocates = 5

// DefaultPartialBatch is the first-batch size for progressive loading.
const DefaultPartialBatch = 200

// ClientService aggregates the client book: status, advocate ranking,
// loan/source/city distributions, loan totals. It supports progressive
// loading: a partial aggregate from the first batch is published before
// the full scan lands, both shaped by the same reducer.
type ClientService struct {
	service
	topN      int
	batchSize int
}

// NewClientService creates the client analytics service. topN bounds
// the advocate ranking; batchSize sizes the progressive first batch.
// Zero values select the defaults.
func NewClientService(o Options, topN, batchSize int) *ClientService {
	if topN <= 0 {
		topN = DefaultTopAdvocates
	}
	if batchSize <= 0 {
		batchSize = DefaultPartialBatch
	}
	s := &ClientService{topN: topN, batchSize: batchSize}
	s.init(DomainClients, o)
	return s
}

// Load returns the client aggregate for the filter state without
// progressive publication.
func (s *ClientService) Load(ctx context.Context, f models.FilterState) *models.ClientAnalytics {
	return s.load(ctx, f, nil)
}

// LoadProgressive behaves like Load but additionally publishes a
// partial aggregate reduced from the first batch before the full scan
// completes. publish receives the same shape the final aggregate has;
// it is only called by the scan initiator on a cache miss.
func (s *ClientService) LoadProgressive(ctx context.Context, f models.FilterState, publish func(*models.ClientAnalytics)) *models.ClientAnalytics {
	return s.load(ctx, f, publish)
}

func (s *ClientService) load(ctx context.Context, f models.FilterState, publish func(*models.ClientAnalytics)) *models.ClientAnalytics {
	defer s.complete()

	f = f.Normalized(s.clock.Now())
	key := cache.ClientsKey(f, s.topN)
	s.state.set(StateKeyComputed)

	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(s.cache.Name())
		s.state.set(StateCacheHit)
		s.state.set(StateDone)
		return v.(*models.ClientAnalytics)
	}
	metrics.RecordCacheMiss(s.cache.Name())
	s.state.set(StateCacheMiss)

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.loadMiss(ctx, f, key, publish), nil
	})
	s.state.set(StateDone)
	return v.(*models.ClientAnalytics)
}

func (s *ClientService) loadMiss(ctx context.Context, f models.FilterState, key string, publish func(*models.ClientAnalytics)) *models.ClientAnalytics {
	s.state.set(StateFetching)
	preds := rangePredicates(f)

	if publish != nil {
		batch, err := s.querier.FetchLimit(ctx, models.CollectionClients, preds, s.batchSize)
		if err == nil {
			publish(s.reduce(batch, true))
		}
	}

	docs, err := s.fetchAll(ctx, models.CollectionClients, preds)
	if err != nil {
		s.log.Error().Err(err).Msg("Clients fetch failed, serving zeroed aggregate")
		metrics.RecordAggregationFailure(s.domain)
		agg := s.emptyClients()
		s.state.set(StateCached)
		s.put(key, agg)
		return agg
	}

	s.state.set(StateReducing)
	phase := s.domain + ".reduce"
	s.perf.Start(phase)
	agg := s.reduce(docs, false)
	metrics.RecordReduce(s.domain, s.perf.End(phase))

	s.state.set(StateCached)
	s.put(key, agg)
	return agg
}

// emptyClients returns the zeroed aggregate with all maps initialized,
// so partial and final publications are structurally identical.
func (s *ClientService) emptyClients() *models.ClientAnalytics {
	return &models.ClientAnalytics{
		StatusDistribution:   map[string]int{},
		TopAdvocates:         []models.AdvocateCount{},
		LoanTypeDistribution: map[string]int{},
		SourceDistribution:   map[string]int{},
		CityDistribution:     map[string]int{},
	}
}

// reduce folds client documents into the aggregate in a single pass.
// Unparseable loan amounts are excluded from the loan sum but the
// document still counts at the top level.
func (s *ClientService) reduce(docs [][]byte, partial bool) *models.ClientAnalytics {
	agg := s.emptyClients()
	agg.Partial = partial
	advocates := map[string]int{}
	loanCount := 0

	for _, raw := range docs {
		agg.TotalClients++

		var c models.Client
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}

		bump(agg.StatusDistribution, c.Status, models.NoStatus)
		bump(advocates, c.Advocate, models.Unassigned)
		bump(agg.LoanTypeDistribution, c.LoanType, "Unknown")
		bump(agg.SourceDistribution, strings.ToLower(c.Source), "unknown")
		bump(agg.CityDistribution, c.City, "Unknown")

		if amount, ok := ParseAmount(c.LoanAmount); ok {
			agg.TotalLoanAmount += amount
			loanCount++
		}
	}

	agg.AvgLoanAmount = safeDiv(agg.TotalLoanAmount, float64(loanCount))
	agg.TopAdvocates = topAdvocates(advocates, s.topN)
	return agg
}

// bump increments a distribution bucket, substituting fallback for
// empty labels.
func bump(dist map[string]int, label, fallback string) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = fallback
	}
	dist[label]++
}

// topAdvocates ranks advocates by client count. Ties break on ascending
// name: the ranking is stable and reproducible, never dependent on map
// iteration order.
func topAdvocates(counts map[string]int, n int) []models.AdvocateCount {
	ranked := make([]models.AdvocateCount, 0, len(counts))
	for name, c := range counts {
		ranked = append(ranked, models.AdvocateCount{Name: name, Clients: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Clients != ranked[j].Clients {
			return ranked[i].Clients > ranked[j].Clients
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
