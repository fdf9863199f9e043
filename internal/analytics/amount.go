// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// unitMultipliers are Indian-notation amount units, longest token first
// so "crores" is consumed before "cr".
var unitMultipliers = []struct {
	token string
	mult  float64
}{
	{"crores", 1e7},
	{"crore", 1e7},
	{"lakhs", 1e5},
	{"lakh", 1e5},
	{"lacs", 1e5},
	{"lac", 1e5},
	{"cr", 1e7},
}

// currencyTokens are stripped from amount strings before parsing.
var currencyTokens = []string{"₹", "rs.", "rs", "inr", ",", " ", " "}

// ParseAmount runs the staged numeric-cleanup pipeline over an untyped
// amount field. Numbers pass through; strings are stripped of currency
// symbols and separators and scaled by lakh/crore units. The boolean is
// false when no usable number could be extracted; callers exclude such
// values from sums but never from top-level document counts.
func ParseAmount(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
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
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		return parseAmountString(n)
	default:
		return 0, false
	}
}

func parseAmountString(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	mult := 1.0
	for _, u := range unitMultipliers {
		if strings.Contains(s, u.token) {
			mult = u.mult
			s = strings.ReplaceAll(s, u.token, "")
			break
		}
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}

	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f * mult, true
}
