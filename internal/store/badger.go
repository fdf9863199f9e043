// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/logging"
)

// ErrNotFound indicates a document does not exist.
var ErrNotFound = errors.New("document not found")

// BadgerStore implements Querier over BadgerDB. Collections are key
// prefixes ("collection/id"); values are JSON-encoded documents.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB-backed store at dir. An
// empty dir opens Badger in in-memory mode, which is useful for
// development and tests.
func OpenBadger(dir string) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	// Badger's default logger writes unstructured lines; route through
	// our own instead.
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Put stores a document under collection/id, JSON-encoded.
func (s *BadgerStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(DocumentKey(collection, id)), data)
	})
}

// Delete removes a document. Deleting an absent document is a no-op.
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(DocumentKey(collection, id)))
	})
}

// Get retrieves a single document by id.
func (s *BadgerStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(DocumentKey(collection, id)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", collection, id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// FetchAll scans the whole collection and returns raw documents
// satisfying all predicates. Predicate filtering happens in the scan;
// there is no index.
func (s *BadgerStore) FetchAll(ctx context.Context, collection string, preds []Predicate) ([][]byte, error) {
	return s.fetch(ctx, collection, preds, 0)
}

// FetchLimit is the partial-scan variant: it stops after limit matching
// documents. A limit of 0 or less behaves like FetchAll.
func (s *BadgerStore) FetchLimit(ctx context.Context, collection string, preds []Predicate, limit int) ([][]byte, error) {
	return s.fetch(ctx, collection, preds, limit)
}

func (s *BadgerStore) fetch(ctx context.Context, collection string, preds []Predicate, limit int) ([][]byte, error) {
	var out [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(collection + "/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var raw []byte
			if err := it.Item().Value(func(val []byte) error {
				raw = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return fmt.Errorf("read %s: %w", it.Item().Key(), err)
			}

			if len(preds) > 0 {
				var doc map[string]interface{}
				if err := json.Unmarshal(raw, &doc); err != nil {
					// Undecodable documents cannot satisfy predicates.
					logging.Warn().Str("collection", collection).Err(err).Msg("Skipping undecodable document in predicate scan")
					continue
				}
				if !matches(doc, preds) {
					continue
				}
			}

			out = append(out, raw)
			if limit > 0 && len(out) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}

	return out, nil
}

// RunValueLogGC triggers one round of Badger value-log garbage
// collection. Badger returns an error when nothing was rewritten; the
// caller treats that as a clean no-op.
func (s *BadgerStore) RunValueLogGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// badgerLogger adapts badger's logger interface to zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}
