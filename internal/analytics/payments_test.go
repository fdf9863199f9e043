// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"testing"

	"github.com/tallyboard/tallyboard/internal/clock"
	"github.com/tallyboard/tallyboard/internal/models"
)

func seedPayments(t *testing.T, q *countingQuerier) {
	t.Helper()
	q.put(t, models.CollectionPayments, "p1", models.Payment{
		ID: "p1", TotalAmount: 1000.0, PaidAmount: 400.0,
		Method: "UPI", Type: "partial", Timestamp: testNow,
	})
	q.put(t, models.CollectionPayments, "p2", models.Payment{
		ID: "p2", TotalAmount: "₹2,000", PaidAmount: "₹2,000",
		Method: "cash", Type: "full", Timestamp: testNow.AddDate(0, -1, 0),
	})
	q.put(t, models.CollectionPayments, "p3", models.Payment{
		ID: "p3", TotalAmount: 500.0, PaidAmount: 100.0,
		Method: "", Type: "advance", Timestamp: testNow,
	})
}

func TestPaymentAggregation(t *testing.T) {
	q := newCountingQuerier()
	seedPayments(t, q)
	svc := NewPaymentService(testOptions(q, clock.NewFake(testNow)), 0)

	agg := svc.Load(context.Background(), models.FilterState{})

	if agg.TotalPayments != 3 {
		t.Errorf("TotalPayments = %d, want 3", agg.TotalPayments)
	}
	if agg.TotalAmount != 3500 {
		t.Errorf("TotalAmount = %v, want 3500", agg.TotalAmount)
	}
	if agg.PaidAmount != 2500 {
		t.Errorf("PaidAmount = %v, want 2500", agg.PaidAmount)
	}
	if agg.PendingAmount != 1000 {
		t.Errorf("PendingAmount = %v, want 1000", agg.PendingAmount)
	}
	// 2500 of 3500, rounded.
	if agg.CompletionRate != 71 {
		t.Errorf("CompletionRate = %d, want 71", agg.CompletionRate)
	}
	if agg.MethodDistribution["upi"] != 1 || agg.MethodDistribution["cash"] != 1 || agg.MethodDistribution["unknown"] != 1 {
		t.Errorf("MethodDistribution = %v", agg.MethodDistribution)
	}
	if agg.TypeDistribution["partial"] != 1 || agg.TypeDistribution["full"] != 1 || agg.TypeDistribution["unknown"] != 1 {
		t.Errorf("TypeDistribution = %v", agg.TypeDistribution)
	}
}

func TestPaymentCompletionRate(t *testing.T) {
	q := newCountingQuerier()
	q.put(t, models.CollectionPayments, "p1", models.Payment{
		ID: "p1", TotalAmount: 1000.0, PaidAmount: 400.0, Timestamp: testNow,
	})
	svc := NewPaymentService(testOptions(q, clock.NewFake(testNow)), 0)

	agg := svc.Load(context.Background(), models.FilterState{})
	if agg.CompletionRate != 40 {
		t.Errorf("CompletionRate = %d, want 40", agg.CompletionRate)
	}
}

func TestPaymentCurrentMonthScoping(t *testing.T) {
	q := newCountingQuerier()
	seedPayments(t, q)
	svc := NewPaymentService(testOptions(q, clock.NewFake(testNow)), 0)

	agg := svc.Load(context.Background(), models.FilterState{})

	// p1 and p3 fall in March; p2's February collection stays out.
	if agg.CurrentMonth.Collected != 500 {
		t.Errorf("CurrentMonth.Collected = %v, want 500", agg.CurrentMonth.Collected)
	}
	if agg.CurrentMonth.Pending != 1000 {
		t.Errorf("CurrentMonth.Pending = %v, want 1000", agg.CurrentMonth.Pending)
	}
}

func TestPaymentMonthlyCollectionSeries(t *testing.T) {
	q := newCountingQuerier()
	seedPayments(t, q)
	svc := NewPaymentService(testOptions(q, clock.NewFake(testNow)), 0)

	agg := svc.Load(context.Background(), models.FilterState{})

	last := agg.MonthlyCollection[len(agg.MonthlyCollection)-1]
	if last.Month != "Mar 2026" || last.Amount != 500 {
		t.Errorf("Mar point = %+v, want amount 500", last)
	}
	feb := agg.MonthlyCollection[len(agg.MonthlyCollection)-2]
	if feb.Month != "Feb 2026" || feb.Amount != 2000 {
		t.Errorf("Feb point = %+v, want amount 2000", feb)
	}
}

func TestPaymentFirstPaintIsPartialAndUncached(t *testing.T) {
	q := newCountingQuerier()
	seedPayments(t, q)
	svc := NewPaymentService(testOptions(q, clock.NewFake(testNow)), 2)

	partial := svc.LoadFirstPaint(context.Background(), models.FilterState{})
	if !partial.Partial {
		t.Error("first-paint aggregate must be marked partial")
	}
	if partial.TotalPayments != 2 {
		t.Errorf("first-paint TotalPayments = %d, want batch size 2", partial.TotalPayments)
	}
	if q.limitScans.Load() != 1 {
		t.Errorf("limit scans = %d, want 1", q.limitScans.Load())
	}

	// The partial result is never cached: the next Load performs the
	// full scan.
	full := svc.Load(context.Background(), models.FilterState{})
	if q.fullScans.Load() != 1 {
		t.Errorf("full scans = %d, want 1", q.fullScans.Load())
	}
	if full.Partial || full.TotalPayments != 3 {
		t.Errorf("full aggregate = partial=%v total=%d, want false/3", full.Partial, full.TotalPayments)
	}
}

func TestPaymentZeroDocuments(t *testing.T) {
	q := newCountingQuerier()
	svc := NewPaymentService(testOptions(q, clock.NewFake(testNow)), 0)

	agg := svc.Load(context.Background(), models.FilterState{})
	if agg.CompletionRate != 0 {
		t.Errorf("CompletionRate = %d, want 0 on empty collection", agg.CompletionRate)
	}
	if len(agg.MonthlyCollection) != models.MonthlySeriesLen {
		t.Errorf("series length = %d, want %d", len(agg.MonthlyCollection), models.MonthlySeriesLen)
	}
}
