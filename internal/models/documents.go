// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package models defines the document shapes read from the store and the
// derived view-model aggregates served to the dashboard.
package models

import "time"

// Collection names in the document store.
const (
	CollectionLeads       = "crm_leads"
	CollectionClients     = "clients"
	CollectionPayments    = "payments"
	CollectionTargets     = "monthly_targets"
	CollectionSalespeople = "salespeople"
)

// Document field names used in query predicates.
const (
	FieldTimestamp  = "timestamp"
	FieldAssignedTo = "assignedTo"
	FieldMonth      = "month"
	FieldYear       = "year"
)

// Lead is a raw lead document. Documents originate from several intake
// channels and frequently arrive with fields missing; reducers must
// tolerate empty source, status and assignee values.
type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	AssignedTo string    `json:"assignedTo"`
	City       string    `json:"city"`
	Converted  bool      `json:"convertedToClient"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client is a raw client document. LoanAmount is deliberately untyped:
// upstream data entry produces numbers, formatted strings ("₹1,23,456")
// and unit-suffixed strings ("2.5 lakh") in the same collection.
type Client struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Status     string      `json:"status"`
	Advocate   string      `json:"advocate"`
	LoanType   string      `json:"loanType"`
	LoanAmount interface{} `json:"loanAmount"`
	Source     string      `json:"source"`
	City       string      `json:"city"`
	AssignedTo string      `json:"assignedTo"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Payment is a raw payment document. Amount fields share LoanAmount's
// untyped treatment.
type Payment struct {
	ID          string      `json:"id"`
	ClientID    string      `json:"clientId"`
	ClientName  string      `json:"clientName"`
	AssignedTo  string      `json:"assignedTo"`
	TotalAmount interface{} `json:"totalPaymentAmount"`
	PaidAmount  interface{} `json:"paidAmount"`
	Method      string      `json:"paymentMethod"`
	Type        string      `json:"paymentType"`
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

// SalesTarget is a per-salesperson monthly target document.
type SalesTarget struct {
	ID             string      `json:"id"`
	Salesperson    string      `json:"assignedTo"`
	Month          int         `json:"month"` // 1-12
	Year           int         `json:"year"`
	TargetAmount   interface{} `json:"targetAmount"`
	Collected      interface{} `json:"amountCollected"`
	ConvertedLeads int         `json:"convertedLeads"`
	TotalLeads     int         `json:"totalLeads"`
}

// Salesperson is a directory entry used to populate filter dropdowns.
type Salesperson struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
