// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package store provides the document query adapter the analytics core
// reads through: full-collection scans constrained by equality/range
// predicates, backed by BadgerDB in production and an in-memory fake in
// tests.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Op is a predicate operator. The adapter deliberately supports only
// equality and inclusive range bounds; everything richer happens in the
// reduction pass.
type Op string

// Supported predicate operators.
const (
	OpEq  Op = "=="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Predicate constrains a collection scan on a single document field.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Eq builds an equality predicate.
func Eq(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// Gte builds an inclusive lower-bound predicate.
func Gte(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpGte, Value: value}
}

// Lte builds an inclusive upper-bound predicate.
func Lte(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpLte, Value: value}
}

// Querier is the read interface the analytics services depend on.
//
// FetchAll is the default full-scan mode: no pagination, the entire
// matching set in one call. FetchLimit is the opt-in partial-scan mode
// used for fast first paint during progressive loading.
type Querier interface {
	FetchAll(ctx context.Context, collection string, preds []Predicate) ([][]byte, error)
	FetchLimit(ctx context.Context, collection string, preds []Predicate, limit int) ([][]byte, error)
}

// matches reports whether a decoded document satisfies all predicates.
// A document missing a predicate field never matches.
func matches(doc map[string]interface{}, preds []Predicate) bool {
	for _, p := range preds {
		val, ok := doc[p.Field]
		if !ok {
			return false
		}
		cmp, ok := compareValues(val, p.Value)
		if !ok {
			return false
		}
		switch p.Op {
		case OpEq:
			if cmp != 0 {
				return false
			}
		case OpGte:
			if cmp < 0 {
				return false
			}
		case OpLte:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues compares a decoded document value against a predicate
// value. Returns (sign, true) on comparable inputs. Time predicates
// accept RFC3339 strings in the document; numeric predicates accept any
// JSON number.
func compareValues(docVal, predVal interface{}) (int, bool) {
	switch pv := predVal.(type) {
	case time.Time:
		var dt time.Time
		switch d := docVal.(type) {
		case time.Time:
			dt = d
		case string:
			parsed, err := time.Parse(time.RFC3339, d)
			if err != nil {
				return 0, false
			}
			dt = parsed
		default:
			return 0, false
		}
		switch {
		case dt.Before(pv):
			return -1, true
		case dt.After(pv):
			return 1, true
		default:
			return 0, true
		}
	case string:
		ds, ok := docVal.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(ds, pv), true
	default:
		pf, ok := toFloat(predVal)
		if !ok {
			return 0, false
		}
		df, ok := toFloat(docVal)
		if !ok {
			return 0, false
		}
		switch {
		case df < pf:
			return -1, true
		case df > pf:
			return 1, true
		default:
			return 0, true
		}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// DocumentKey composes the storage key for a document.
func DocumentKey(collection, id string) string {
	return fmt.Sprintf("%s/%s", collection, id)
}
