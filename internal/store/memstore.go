// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// MemStore is an in-memory Querier used by tests and local development.
// Documents are returned in insertion order, which keeps partial-scan
// tests deterministic.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string][]memDoc
}

type memDoc struct {
	id  string
	raw []byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string][]memDoc)}
}

// Put stores a document, replacing any existing document with the same
// id while keeping its original position.
func (s *MemStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i := range docs {
		if docs[i].id == id {
			docs[i].raw = data
			return nil
		}
	}
	s.collections[collection] = append(docs, memDoc{id: id, raw: data})
	return nil
}

// Delete removes a document by id.
func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i := range docs {
		if docs[i].id == id {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

// FetchAll returns all matching documents in insertion order.
func (s *MemStore) FetchAll(ctx context.Context, collection string, preds []Predicate) ([][]byte, error) {
	return s.fetch(ctx, collection, preds, 0)
}

// FetchLimit returns at most limit matching documents in insertion
// order. A limit of 0 or less behaves like FetchAll.
func (s *MemStore) FetchLimit(ctx context.Context, collection string, preds []Predicate, limit int) ([][]byte, error) {
	return s.fetch(ctx, collection, preds, limit)
}

func (s *MemStore) fetch(ctx context.Context, collection string, preds []Predicate, limit int) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out [][]byte
	for _, d := range s.collections[collection] {
		if len(preds) > 0 {
			var doc map[string]interface{}
			if err := json.Unmarshal(d.raw, &doc); err != nil {
				continue
			}
			if !matches(doc, preds) {
				continue
			}
		}
		out = append(out, d.raw)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
