// Package services holds the business logic: the month reconciler and the
// CRUD services around it. Storage is reached through narrow ports so the
// SQLite repository and the in-memory store are interchangeable.
package services

import (
	"context"
	"time"

	"wisewallet/internal/core"
)

// TransactionReader fetches stored transactions.
type TransactionReader interface {
	TransactionsInRange(ctx context.Context, ownerID string, start, end time.Time) ([]core.Transaction, error)
	RecentTransactions(ctx context.Context, ownerID string, limit int) ([]core.Transaction, error)
	UpcomingTransactions(ctx context.Context, ownerID string, after time.Time, limit int) ([]core.Transaction, error)
}

// TransactionWriter persists transaction mutations.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id string) error
	DeleteAllTransactions(ctx context.Context, ownerID string) error
}

// BudgetReader fetches budgets overlapping a date range. An empty ownerID
// means no owner filter.
type BudgetReader interface {
	BudgetsOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]core.Budget, error)
}

// BudgetWriter persists budget mutations.
type BudgetWriter interface {
	CreateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, ownerID, id string) error
}

// CategoryStore manages spending categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) error
	ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id string) error
}

// GoalStore manages savings goals and their completed archive.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.SavingsGoal) error
	ListGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error)
	Goal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error)
	UpdateGoalCurrent(ctx context.Context, ownerID, id string, currentCents int64) error
	CompleteGoal(ctx context.Context, g core.SavingsGoal, completedAt time.Time) error
	DeleteGoal(ctx context.Context, ownerID, id string) error
	ListCompletedGoals(ctx context.Context, ownerID string) ([]core.CompletedSavingsGoal, error)
}

// WealthStore manages the per-owner wealth row.
type WealthStore interface {
	UpsertWealth(ctx context.Context, w core.Wealth) error
	Wealth(ctx context.Context, ownerID string) (core.Wealth, error)
}

// UserStore manages accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	UserByEmail(ctx context.Context, email string) (core.User, error)
}

// ChangeNotifier announces a mutation on a table. Implementations must not
// block request handling; failures are logged, not returned.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, table, ownerID, op string)
}
