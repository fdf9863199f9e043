// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/metrics"
	"github.com/tallyboard/tallyboard/internal/models"
)

// DirectoryService serves the salespeople directory that backs the
// filter dropdowns. The list changes rarely, so it is cached under a
// day-bucketed key with a long TTL.
type DirectoryService struct {
	service
}

// NewDirectoryService creates the salespeople directory service.
func NewDirectoryService(o Options) *DirectoryService {
	s := &DirectoryService{}
	s.init(DomainSalespeople, o)
	return s
}

// Load returns the directory sorted by name. Failures resolve to an
// empty list, cached like any other aggregate.
func (s *DirectoryService) Load(ctx context.Context) []models.Salesperson {
	defer s.complete()

	key := cache.SalespeopleKey(s.clock.Now())
	s.state.set(StateKeyComputed)

	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(s.cache.Name())
		s.state.set(StateCacheHit)
		s.state.set(StateDone)
		return v.([]models.Salesperson)
	}
	metrics.RecordCacheMiss(s.cache.Name())
	s.state.set(StateCacheMiss)

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.loadMiss(ctx, key), nil
	})
	s.state.set(StateDone)
	return v.([]models.Salesperson)
}

func (s *DirectoryService) loadMiss(ctx context.Context, key string) []models.Salesperson {
	s.state.set(StateFetching)

	docs, err := s.fetchAll(ctx, models.CollectionSalespeople, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("Salespeople fetch failed, serving empty directory")
		metrics.RecordAggregationFailure(s.domain)
		people := []models.Salesperson{}
		s.state.set(StateCached)
		s.put(key, people)
		return people
	}

	s.state.set(StateReducing)
	people := make([]models.Salesperson, 0, len(docs))
	for _, raw := range docs {
		var p models.Salesperson
		if err := json.Unmarshal(raw, &p); err != nil || p.Name == "" {
			continue
		}
		people = append(people, p)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Name < people[j].Name })

	s.state.set(StateCached)
	s.put(key, people)
	return people
}
