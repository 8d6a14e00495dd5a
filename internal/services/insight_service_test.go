package services

import (
	"context"
	"testing"
	"time"

	"wisewallet/internal/core"
	"wisewallet/internal/storage/memory"
)

func seedInsightData(t *testing.T, store *memory.Store) (incomeID, expenseID string) {
	t.Helper()
	ctx := context.Background()
	ledger := NewLedgerService(store, store, nil)

	income, err := ledger.AddCategory(ctx, "u1", "Income", core.RoleIncome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expense, err := ledger.AddCategory(ctx, "u1", "Bills", core.RoleExpense)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return income.ID, expense.ID
}

func TestOverview(t *testing.T) {
	store := memory.New()
	incomeID, expenseID := seedInsightData(t, store)
	ctx := context.Background()
	now := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	ledger := NewLedgerService(store, store, nil)
	budgets := NewBudgetService(store, nil, false)

	if _, err := budgets.AddBudget(ctx, "u1", "", "600", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ledger.AddTransaction(ctx, "u1", expenseID, "rent", "250", now.AddDate(0, 0, -5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ledger.AddTransaction(ctx, "u1", incomeID, "salary", "100", now.AddDate(0, 0, -4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Future-dated rows are upcoming bills, and still belong to the month's
	// net spending.
	if _, err := ledger.AddTransaction(ctx, "u1", expenseID, "insurance", "80", now.AddDate(0, 0, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overview, err := NewInsightService(store, store, store, false).Overview(ctx, "u1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.TotalBudget.Cents != 60000 {
		t.Fatalf("total = %d, want 60000", overview.TotalBudget.Cents)
	}
	if overview.Spent.Cents != 23000 {
		t.Fatalf("spent = %d, want 23000", overview.Spent.Cents)
	}
	if overview.Remaining.Cents != 37000 {
		t.Fatalf("remaining = %d, want 37000", overview.Remaining.Cents)
	}
	if len(overview.UpcomingBills) != 1 || overview.UpcomingBills[0].Description != "insurance" {
		t.Fatalf("upcoming = %+v, want the insurance row", overview.UpcomingBills)
	}
}

func TestSeries(t *testing.T) {
	store := memory.New()
	incomeID, expenseID := seedInsightData(t, store)
	ctx := context.Background()
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	ledger := NewLedgerService(store, store, nil)
	add := func(categoryID, amount string, date time.Time) {
		t.Helper()
		if _, err := ledger.AddTransaction(ctx, "u1", categoryID, "x", amount, date); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	add(expenseID, "100", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	add(incomeID, "40", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	add(expenseID, "60", time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC))
	add(expenseID, "25", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	series, err := NewInsightService(store, store, store, false).Series(ctx, "u1", now, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}

	want := []core.SeriesPoint{
		{Year: 2025, Month: 1, Expense: core.Money{Cents: 10000}},
		{Year: 2025, Month: 2, Income: core.Money{Cents: 4000}, Expense: core.Money{Cents: 6000}},
		{Year: 2025, Month: 3, Expense: core.Money{Cents: 2500}},
	}
	for i, p := range series {
		if p != want[i] {
			t.Fatalf("series[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestSeriesFromMonthEndDoesNotSkipShortMonths(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	// Referenced from March 31, the 2-month series must cover February,
	// not jump from March to January.
	series, err := NewInsightService(store, store, store, false).Series(ctx, "u1", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 || series[0].Month != 2 || series[1].Month != 3 {
		t.Fatalf("series months = %+v, want February then March", series)
	}
}
