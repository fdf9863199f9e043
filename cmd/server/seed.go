// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tallyboard/tallyboard/internal/config"
	"github.com/tallyboard/tallyboard/internal/models"
	"github.com/tallyboard/tallyboard/internal/store"
)

// shouldSeed reports whether demo data gets loaded at startup. An
// in-memory store starts empty on every boot, so it always seeds;
// persistent stores seed only when the flag asks for it.
func shouldSeed(sc config.StoreConfig) bool {
	return sc.Path == "" || sc.SeedDemo
}

// seedDemoData loads a small, deterministic dataset so a fresh install
// renders a populated dashboard. Amount fields deliberately mix the
// numeric and string notations found in real imports.
func seedDemoData(ctx context.Context, db *store.BadgerStore) error {
	now := time.Now().UTC()
	people := []models.Salesperson{
		{ID: "sp1", Name: "Asha Kulkarni"},
		{ID: "sp2", Name: "Ravi Menon"},
		{ID: "sp3", Name: "Priya Nair"},
	}
	for _, p := range people {
		if err := db.Put(ctx, models.CollectionSalespeople, p.ID, p); err != nil {
			return fmt.Errorf("seed salespeople: %w", err)
		}
	}

	statuses := []string{"Interested", "Converted", "Not Interested", ""}
	for i := 0; i < 40; i++ {
		lead := models.Lead{
			ID:         fmt.Sprintf("lead-%02d", i),
			Name:       fmt.Sprintf("Lead %02d", i),
			Source:     models.Sources[i%len(models.Sources)],
			Status:     statuses[i%len(statuses)],
			AssignedTo: people[i%len(people)].Name,
			Timestamp:  now.AddDate(0, -(i % 5), -(i % 17)),
		}
		if err := db.Put(ctx, models.CollectionLeads, lead.ID, lead); err != nil {
			return fmt.Errorf("seed leads: %w", err)
		}
	}

	loanAmounts := []interface{}{350000.0, "₹4,20,000", "2.5 lakh", "1.1 crore", nil}
	advocates := []string{"Meera Joshi", "Arjun Rao", ""}
	for i := 0; i < 25; i++ {
		client := models.Client{
			ID:         fmt.Sprintf("client-%02d", i),
			Name:       fmt.Sprintf("Client %02d", i),
			Status:     []string{"Active", "On Hold", "Dropped"}[i%3],
			Advocate:   advocates[i%len(advocates)],
			LoanType:   []string{"Personal", "Business", ""}[i%3],
			LoanAmount: loanAmounts[i%len(loanAmounts)],
			Source:     models.Sources[i%len(models.Sources)],
			City:       []string{"Mumbai", "Pune", "Delhi", ""}[i%4],
			AssignedTo: people[i%len(people)].Name,
			Timestamp:  now.AddDate(0, -(i % 4), -(i % 11)),
		}
		if err := db.Put(ctx, models.CollectionClients, client.ID, client); err != nil {
			return fmt.Errorf("seed clients: %w", err)
		}
	}

	for i := 0; i < 30; i++ {
		paid := 500.0 * float64(1+i%4)
		payment := models.Payment{
			ID:          fmt.Sprintf("payment-%02d", i),
			ClientID:    fmt.Sprintf("client-%02d", i%25),
			AssignedTo:  people[i%len(people)].Name,
			TotalAmount: 2000.0 + 100.0*float64(i),
			PaidAmount:  paid,
			Method:      []string{"upi", "cash", "bank transfer", ""}[i%4],
			Type:        []string{"full", "partial", ""}[i%3],
			Timestamp:   now.AddDate(0, -(i % 6), -(i % 13)),
		}
		if err := db.Put(ctx, models.CollectionPayments, payment.ID, payment); err != nil {
			return fmt.Errorf("seed payments: %w", err)
		}
	}

	for m := 0; m < 6; m++ {
		month := now.AddDate(0, -m, 0)
		for _, p := range people {
			target := models.SalesTarget{
				ID:             fmt.Sprintf("target-%s-%s", p.ID, month.Format("2006-01")),
				Salesperson:    p.Name,
				Month:          int(month.Month()),
				Year:           month.Year(),
				TargetAmount:   500000.0,
				Collected:      100000.0 * float64(1+m%3),
				ConvertedLeads: 2 + m%4,
				TotalLeads:     8 + m,
			}
			if err := db.Put(ctx, models.CollectionTargets, target.ID, target); err != nil {
				return fmt.Errorf("seed targets: %w", err)
			}
		}
	}

	return nil
}
