package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"wisewallet/internal/core"
)

// ErrReconciliation wraps any fetch failure during month reconciliation.
// Callers get either a complete summary or this error, never partial data.
var ErrReconciliation = errors.New("month reconciliation failed")

// Reconciler computes the effective budget for a month: the month's own
// budget total plus whatever surplus the previous month left over.
//
// It is a pure request/response component. It does not retry, does not log,
// and does not subscribe to change events; callers re-invoke it when they
// learn that underlying data changed.
type Reconciler struct {
	transactions TransactionReader
	budgets      BudgetReader
	categories   CategoryStore

	sharedBudgets bool
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithSharedBudgets drops the owner filter on budget fetches, reproducing
// the legacy behavior where all budget rows formed one shared pot.
func WithSharedBudgets() ReconcilerOption {
	return func(r *Reconciler) {
		r.sharedBudgets = true
	}
}

func NewReconciler(transactions TransactionReader, budgets BudgetReader, categories CategoryStore, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		transactions: transactions,
		budgets:      budgets,
		categories:   categories,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MonthSummary reconciles the calendar month containing ref for the given
// owner.
//
// An empty ownerID is not an error: it returns a zero summary without
// touching storage, so unauthenticated callers get an instant empty state.
// The five fetches (current and previous transactions, current and previous
// budgets, categories) run concurrently; any failure fails the whole call.
func (r *Reconciler) MonthSummary(ctx context.Context, ownerID string, ref time.Time) (core.MonthSummary, error) {
	if ownerID == "" {
		return core.MonthSummary{}, nil
	}

	curStart, curEnd := core.MonthWindow(ref)
	prevStart, prevEnd := core.PreviousMonthWindow(ref)

	budgetOwner := ownerID
	if r.sharedBudgets {
		budgetOwner = ""
	}

	var (
		current     []core.Transaction
		previous    []core.Transaction
		curBudgets  []core.Budget
		prevBudgets []core.Budget
		categories  []core.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = r.transactions.TransactionsInRange(gctx, ownerID, curStart, curEnd)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = r.transactions.TransactionsInRange(gctx, ownerID, prevStart, prevEnd)
		return err
	})
	g.Go(func() error {
		var err error
		curBudgets, err = r.budgets.BudgetsOverlapping(gctx, budgetOwner, curStart, curEnd)
		return err
	})
	g.Go(func() error {
		var err error
		prevBudgets, err = r.budgets.BudgetsOverlapping(gctx, budgetOwner, prevStart, prevEnd)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = r.categories.ListCategories(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("%w: %w", ErrReconciliation, err)
	}

	incomeIDs := make(map[string]bool)
	for _, c := range categories {
		if c.Role.IsIncome() {
			incomeIDs[c.ID] = true
		}
	}

	var currentBudgetTotal, previousBudgetTotal int64
	for _, b := range curBudgets {
		currentBudgetTotal += b.Amount.Cents
	}
	for _, b := range prevBudgets {
		previousBudgetTotal += b.Amount.Cents
	}

	// Income reduces net spending; anything without an income category,
	// including rows whose category was deleted, counts as an expense.
	var previousNet int64
	for _, t := range previous {
		if t.CategoryID != "" && incomeIDs[t.CategoryID] {
			previousNet -= t.Amount.Cents
		} else {
			previousNet += t.Amount.Cents
		}
	}

	carryOver := previousBudgetTotal - previousNet
	if carryOver < 0 {
		carryOver = 0
	}

	return core.MonthSummary{
		Transactions:    current,
		EffectiveBudget: core.Money{Cents: currentBudgetTotal + carryOver},
	}, nil
}
