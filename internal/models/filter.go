// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package models

import "time"

// All is the sentinel meaning "no filter" for salesperson selection.
const All = "all"

// FilterState is the dashboard filter tuple that parameterizes every
// aggregate. Nil Month/Year mean "current period"; Applied distinguishes
// an actually-applied date range from date strings that merely sit in
// the form.
type FilterState struct {
	Month       *int   `json:"month"` // 1-12
	Year        *int   `json:"year"`
	Salesperson string `json:"salesperson"` // "" or "all" means all
	StartDate   string `json:"startDate"`   // ISO date, inclusive
	EndDate     string `json:"endDate"`     // ISO date, inclusive
	Applied     bool   `json:"applied"`
}

// Normalized resolves nil Month/Year to now's calendar period, so a
// fully-defaulted filter and an explicit current-period filter derive
// the same cache key and the same aggregate.
func (f FilterState) Normalized(now time.Time) FilterState {
	if f.Month == nil {
		m := int(now.Month())
		f.Month = &m
	}
	if f.Year == nil {
		y := now.Year()
		f.Year = &y
	}
	return f
}

// SalespersonOrAll collapses the empty string to the All sentinel.
func (f FilterState) SalespersonOrAll() string {
	if f.Salesperson == "" {
		return All
	}
	return f.Salesperson
}

// HasSalesperson reports whether a specific salesperson is selected.
func (f FilterState) HasSalesperson() bool {
	return f.Salesperson != "" && f.Salesperson != All
}

// HasDateRange reports whether an applied date range constrains reads.
func (f FilterState) HasDateRange() bool {
	return f.Applied && f.StartDate != "" && f.EndDate != ""
}
