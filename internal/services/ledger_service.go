package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"wisewallet/internal/core"
	"wisewallet/internal/log"
)

// TransactionStore combines the read and write ports for transactions.
type TransactionStore interface {
	TransactionReader
	TransactionWriter
}

// LedgerService manages transactions and the categories they are filed
// under. Mutations are announced through the change notifier so cached
// month summaries can refresh.
type LedgerService struct {
	transactions TransactionStore
	categories   CategoryStore
	notifier     ChangeNotifier
	logs         *log.StructuredLogger
}

func NewLedgerService(transactions TransactionStore, categories CategoryStore, notifier ChangeNotifier) *LedgerService {
	return &LedgerService{
		transactions: transactions,
		categories:   categories,
		notifier:     notifier,
		logs:         log.NewStructuredLogger(log.New(log.Config{Handler: slog.Default().Handler()})),
	}
}

const recentLimit = 5

func (s *LedgerService) AddTransaction(ctx context.Context, ownerID, categoryID, description, amount string, date time.Time) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		CategoryID:  categoryID,
		Description: strings.TrimSpace(description),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.logs.LogTransactionCreated(ctx, ownerID, t.Description, t.Amount.Cents, t.CategoryID)
	s.notify(ctx, "transactions", ownerID, "create")
	return t, nil
}

func (s *LedgerService) MonthTransactions(ctx context.Context, ownerID string, ref time.Time) ([]core.Transaction, error) {
	start, end := core.MonthWindow(ref)
	out, err := s.transactions.TransactionsInRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}
	return out, nil
}

func (s *LedgerService) RecentTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	out, err := s.transactions.RecentTransactions(ctx, ownerID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return out, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.transactions.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.notify(ctx, "transactions", ownerID, "delete")
	return nil
}

// ResetTransactions wipes the owner's full transaction history.
func (s *LedgerService) ResetTransactions(ctx context.Context, ownerID string) error {
	if err := s.transactions.DeleteAllTransactions(ctx, ownerID); err != nil {
		return fmt.Errorf("reset transactions: %w", err)
	}
	s.notify(ctx, "transactions", ownerID, "reset")
	return nil
}

func (s *LedgerService) AddCategory(ctx context.Context, ownerID, name string, role core.CategoryRole) (core.Category, error) {
	c := core.Category{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    strings.TrimSpace(name),
		Role:    role,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.notify(ctx, "categories", ownerID, "create")
	return c, nil
}

func (s *LedgerService) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	out, err := s.categories.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// EnsureIncomeCategory returns the owner's income category, creating a
// default "Income" one if none exists yet.
func (s *LedgerService) EnsureIncomeCategory(ctx context.Context, ownerID string) (core.Category, error) {
	existing, err := s.categories.ListCategories(ctx, ownerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("ensure income category: %w", err)
	}
	for _, c := range existing {
		if c.Role.IsIncome() {
			return c, nil
		}
	}
	return s.AddCategory(ctx, ownerID, "Income", core.RoleIncome)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := s.categories.DeleteCategory(ctx, ownerID, id); err != nil {
		if err == core.ErrCategoryInUse || err == core.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	s.notify(ctx, "categories", ownerID, "delete")
	return nil
}

func (s *LedgerService) notify(ctx context.Context, table, ownerID, op string) {
	if s.notifier != nil {
		s.notifier.NotifyChange(ctx, table, ownerID, op)
	}
}
