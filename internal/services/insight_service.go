package services

import (
	"context"
	"fmt"
	"time"

	"wisewallet/internal/core"
)

const upcomingBillsLimit = 3

// InsightService aggregates stored data into the overview and chart series
// shown on the dashboard.
type InsightService struct {
	transactions TransactionReader
	budgets      BudgetReader
	categories   CategoryStore

	sharedBudgets bool
}

func NewInsightService(transactions TransactionReader, budgets BudgetReader, categories CategoryStore, sharedBudgets bool) *InsightService {
	return &InsightService{
		transactions:  transactions,
		budgets:       budgets,
		categories:    categories,
		sharedBudgets: sharedBudgets,
	}
}

// Overview reports how the month containing now is tracking: total
// budgeted, net spent, what remains, and the next few future-dated
// transactions.
func (s *InsightService) Overview(ctx context.Context, ownerID string, now time.Time) (core.BudgetOverview, error) {
	start, end := core.MonthWindow(now)

	budgetOwner := ownerID
	if s.sharedBudgets {
		budgetOwner = ""
	}
	budgets, err := s.budgets.BudgetsOverlapping(ctx, budgetOwner, start, end)
	if err != nil {
		return core.BudgetOverview{}, fmt.Errorf("overview budgets: %w", err)
	}
	transactions, err := s.transactions.TransactionsInRange(ctx, ownerID, start, end)
	if err != nil {
		return core.BudgetOverview{}, fmt.Errorf("overview transactions: %w", err)
	}
	incomeIDs, err := s.incomeCategoryIDs(ctx, ownerID)
	if err != nil {
		return core.BudgetOverview{}, err
	}
	upcoming, err := s.transactions.UpcomingTransactions(ctx, ownerID, now, upcomingBillsLimit)
	if err != nil {
		return core.BudgetOverview{}, fmt.Errorf("overview upcoming: %w", err)
	}

	var total, spent int64
	for _, b := range budgets {
		total += b.Amount.Cents
	}
	for _, t := range transactions {
		if t.CategoryID != "" && incomeIDs[t.CategoryID] {
			spent -= t.Amount.Cents
		} else {
			spent += t.Amount.Cents
		}
	}

	return core.BudgetOverview{
		TotalBudget:   core.Money{Cents: total},
		Spent:         core.Money{Cents: spent},
		Remaining:     core.Money{Cents: total - spent},
		UpcomingBills: upcoming,
	}, nil
}

// Series returns per-month income and expense totals for the given number
// of months, oldest first, ending with the month containing now.
func (s *InsightService) Series(ctx context.Context, ownerID string, now time.Time, months int) ([]core.SeriesPoint, error) {
	if months < 1 {
		months = 1
	}
	incomeIDs, err := s.incomeCategoryIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Step back from the first of the month so a day-31 reference cannot
	// skip short months.
	firstOfMonth, _ := core.MonthWindow(now)

	out := make([]core.SeriesPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		start, end := core.MonthWindow(firstOfMonth.AddDate(0, -i, 0))
		transactions, err := s.transactions.TransactionsInRange(ctx, ownerID, start, end)
		if err != nil {
			return nil, fmt.Errorf("series transactions: %w", err)
		}

		point := core.SeriesPoint{Year: start.Year(), Month: int(start.Month())}
		for _, t := range transactions {
			if t.CategoryID != "" && incomeIDs[t.CategoryID] {
				point.Income.Cents += t.Amount.Cents
			} else {
				point.Expense.Cents += t.Amount.Cents
			}
		}
		out = append(out, point)
	}
	return out, nil
}

func (s *InsightService) incomeCategoryIDs(ctx context.Context, ownerID string) (map[string]bool, error) {
	categories, err := s.categories.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	incomeIDs := make(map[string]bool)
	for _, c := range categories {
		if c.Role.IsIncome() {
			incomeIDs[c.ID] = true
		}
	}
	return incomeIDs, nil
}
