package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wisewallet/internal/core"
)

// BudgetStore combines the read and write ports for budgets.
type BudgetStore interface {
	BudgetReader
	BudgetWriter
}

// BudgetService manages budget allocations over closed date intervals.
type BudgetService struct {
	budgets  BudgetStore
	notifier ChangeNotifier

	sharedBudgets bool
}

func NewBudgetService(budgets BudgetStore, notifier ChangeNotifier, sharedBudgets bool) *BudgetService {
	return &BudgetService{
		budgets:       budgets,
		notifier:      notifier,
		sharedBudgets: sharedBudgets,
	}
}

func (s *BudgetService) AddBudget(ctx context.Context, ownerID, categoryID, amount string, start, end time.Time) (core.Budget, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Amount:     core.Money{Cents: cents},
		StartDate:  start,
		EndDate:    end,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if err := s.budgets.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("add budget: %w", err)
	}
	s.notify(ctx, ownerID, "create")
	return b, nil
}

// MonthBudgets returns budgets whose interval overlaps the calendar month
// containing ref.
func (s *BudgetService) MonthBudgets(ctx context.Context, ownerID string, ref time.Time) ([]core.Budget, error) {
	start, end := core.MonthWindow(ref)
	owner := ownerID
	if s.sharedBudgets {
		owner = ""
	}
	out, err := s.budgets.BudgetsOverlapping(ctx, owner, start, end)
	if err != nil {
		return nil, fmt.Errorf("list month budgets: %w", err)
	}
	return out, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, ownerID, id string) error {
	if err := s.budgets.DeleteBudget(ctx, ownerID, id); err != nil {
		if err == core.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete budget: %w", err)
	}
	s.notify(ctx, ownerID, "delete")
	return nil
}

func (s *BudgetService) notify(ctx context.Context, ownerID, op string) {
	if s.notifier != nil {
		s.notifier.NotifyChange(ctx, "budgets", ownerID, op)
	}
}
