// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package models

// Sources is the fixed lead-source enum. Documents whose source does not
// normalize to one of these are counted in an aggregate's top-level total
// but excluded from per-source buckets.
var Sources = []string{"settleloans", "credsettlee", "ama", "billcut"}

// NoStatus is the sentinel bucket for documents without a status field.
const NoStatus = "No Status"

// Unassigned is the sentinel bucket for clients without an advocate.
const Unassigned = "Unassigned"

// MonthlySeriesLen is the fixed length of trailing monthly series.
const MonthlySeriesLen = 6

// SourceTotals maps each known lead source to a document count.
// Every known source is present, zero-filled.
type SourceTotals map[string]int

// NewSourceTotals returns a zero-filled SourceTotals over the full enum.
func NewSourceTotals() SourceTotals {
	t := make(SourceTotals, len(Sources))
	for _, s := range Sources {
		t[s] = 0
	}
	return t
}

// Sum returns the total count across all sources.
func (t SourceTotals) Sum() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// StatusDistribution is a status × source cross tabulation. For any
// source, the column sum across statuses equals that source's total in
// the companion SourceTotals.
type StatusDistribution map[string]SourceTotals

// LeadAnalytics is the lead-source/status dashboard aggregate.
type LeadAnalytics struct {
	TotalLeads         int                `json:"totalLeads"`
	SourceTotals       SourceTotals       `json:"sourceTotals"`
	StatusDistribution StatusDistribution `json:"statusDistribution"`
}

// MonthlyPoint is one bucket of a trailing monthly series.
type MonthlyPoint struct {
	Month  string  `json:"month"` // "Apr 2026"
	Amount float64 `json:"amount"`
}

// SalesAnalytics is the target/revenue rollup for one period. The
// MonthlyRevenue series is always exactly MonthlySeriesLen points,
// most-recent-last, zero-filled for months with no data.
type SalesAnalytics struct {
	TotalTargetAmount    float64        `json:"totalTargetAmount"`
	TotalCollectedAmount float64        `json:"totalCollectedAmount"`
	MonthlyRevenue       []MonthlyPoint `json:"monthlyRevenue"`
	ConversionRate       int            `json:"conversionRate"` // percent
	AvgDealSize          float64        `json:"avgDealSize"`
}

// AdvocateCount is one row of the top-advocate ranking.
type AdvocateCount struct {
	Name    string `json:"name"`
	Clients int    `json:"clients"`
}

// ClientAnalytics is the client-book dashboard aggregate. Partial marks
// an aggregate reduced from a first-batch scan during progressive
// loading; the final full-scan aggregate clears it. Both pass through
// the same reducer, so the shape never differs.
type ClientAnalytics struct {
	TotalClients         int             `json:"totalClients"`
	StatusDistribution   map[string]int  `json:"statusDistribution"`
	TopAdvocates         []AdvocateCount `json:"topAdvocates"`
	LoanTypeDistribution map[string]int  `json:"loanTypeDistribution"`
	SourceDistribution   map[string]int  `json:"sourceDistribution"`
	CityDistribution     map[string]int  `json:"cityDistribution"`
	TotalLoanAmount      float64         `json:"totalLoanAmount"`
	AvgLoanAmount        float64         `json:"avgLoanAmount"`
	Partial              bool            `json:"partial"`
}

// CurrentMonthPayments is the collected/pending split scoped to the
// current calendar month only.
type CurrentMonthPayments struct {
	Collected float64 `json:"collected"`
	Pending   float64 `json:"pending"`
}

// PaymentAnalytics is the collections dashboard aggregate.
type PaymentAnalytics struct {
	TotalPayments      int                  `json:"totalPayments"`
	TotalAmount        float64              `json:"totalAmount"`
	PaidAmount         float64              `json:"paidAmount"`
	PendingAmount      float64              `json:"pendingAmount"`
	CompletionRate     int                  `json:"completionRate"` // percent
	MethodDistribution map[string]int       `json:"methodDistribution"`
	TypeDistribution   map[string]int       `json:"typeDistribution"`
	MonthlyCollection  []MonthlyPoint       `json:"monthlyCollection"`
	CurrentMonth       CurrentMonthPayments `json:"currentMonth"`
	Partial            bool                 `json:"partial"`
}

// DashboardAnalytics is the combined staged-load response.
type DashboardAnalytics struct {
	Sales    *SalesAnalytics   `json:"sales"`
	Leads    *LeadAnalytics    `json:"leads"`
	Clients  *ClientAnalytics  `json:"clients"`
	Payments *PaymentAnalytics `json:"payments"`
}
