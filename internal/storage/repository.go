// Package storage provides the SQLite persistence layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wisewallet/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, owner_id, name, role) VALUES (?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, string(c.Role))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, role FROM categories WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var role string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &role); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Role = core.CategoryRole(role)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCategory removes a category only when no transaction or budget still
// references it.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	var used int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM transactions WHERE category_id = ?)
		      + (SELECT COUNT(*) FROM budgets WHERE category_id = ?)`, id, id).
		Scan(&used)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if used > 0 {
		return core.ErrCategoryInUse
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, category_id, description, amount_cents, tx_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, nullable(t.CategoryID), t.Description, t.Amount.Cents,
		t.Date.UnixMilli(), t.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// TransactionsInRange returns transactions dated within [start, end],
// newest first.
func (r *SQLiteRepository) TransactionsInRange(ctx context.Context, ownerID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category_id, description, amount_cents, tx_date, created_at
		 FROM transactions
		 WHERE owner_id = ? AND tx_date >= ? AND tx_date <= ?
		 ORDER BY tx_date DESC`,
		ownerID, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) RecentTransactions(ctx context.Context, ownerID string, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category_id, description, amount_cents, tx_date, created_at
		 FROM transactions
		 WHERE owner_id = ?
		 ORDER BY tx_date DESC, created_at DESC
		 LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// UpcomingTransactions returns future-dated transactions after the given
// instant, soonest first.
func (r *SQLiteRepository) UpcomingTransactions(ctx context.Context, ownerID string, after time.Time, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category_id, description, amount_cents, tx_date, created_at
		 FROM transactions
		 WHERE owner_id = ? AND tx_date > ?
		 ORDER BY tx_date ASC
		 LIMIT ?`,
		ownerID, after.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	return nil
}

// --- budgets ---

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, owner_id, category_id, amount_cents, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, nullable(b.CategoryID), b.Amount.Cents,
		b.StartDate.UnixMilli(), b.EndDate.UnixMilli())
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

// BudgetsOverlapping returns budgets whose closed [start_date, end_date]
// interval intersects [start, end]. An empty ownerID skips the owner filter,
// which matches the legacy shared-pot behavior.
func (r *SQLiteRepository) BudgetsOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]core.Budget, error) {
	query := `SELECT id, owner_id, category_id, amount_cents, start_date, end_date
		 FROM budgets
		 WHERE end_date >= ? AND start_date <= ?`
	args := []any{start.UnixMilli(), end.UnixMilli()}
	if ownerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, ownerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overlapping budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var categoryID sql.NullString
		var startMs, endMs int64
		if err := rows.Scan(&b.ID, &b.OwnerID, &categoryID, &b.Amount.Cents, &startMs, &endMs); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CategoryID = categoryID.String
		b.StartDate = time.UnixMilli(startMs).UTC()
		b.EndDate = time.UnixMilli(endMs).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- savings goals ---

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, owner_id, name, target_cents, current_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, target_cents, current_cents, created_at
		 FROM savings_goals WHERE owner_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Goal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, target_cents, current_cents, created_at
		 FROM savings_goals WHERE id = ? AND owner_id = ?`, id, ownerID)

	var g core.SavingsGoal
	var createdAt int64
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get savings goal: %w", err)
	}
	g.CreatedAt = time.UnixMilli(createdAt).UTC()
	return g, nil
}

func (r *SQLiteRepository) UpdateGoalCurrent(ctx context.Context, ownerID, id string, currentCents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_cents = ? WHERE id = ? AND owner_id = ?`,
		currentCents, id, ownerID)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CompleteGoal moves a goal into completed_savings_goals in a single
// transaction.
func (r *SQLiteRepository) CompleteGoal(ctx context.Context, g core.SavingsGoal, completedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete goal: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO completed_savings_goals (id, owner_id, name, target_cents, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.TargetAmount.Cents, completedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert completed goal: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND owner_id = ?`, g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("remove completed goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}

	return tx.Commit()
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListCompletedGoals(ctx context.Context, ownerID string) ([]core.CompletedSavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, target_cents, completed_at
		 FROM completed_savings_goals WHERE owner_id = ? ORDER BY completed_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list completed goals: %w", err)
	}
	defer rows.Close()

	var out []core.CompletedSavingsGoal
	for rows.Next() {
		var g core.CompletedSavingsGoal
		var completedAt int64
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.TargetAmount.Cents, &completedAt); err != nil {
			return nil, fmt.Errorf("scan completed goal: %w", err)
		}
		g.CompletedAt = time.UnixMilli(completedAt).UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

// --- wealth ---

func (r *SQLiteRepository) UpsertWealth(ctx context.Context, w core.Wealth) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wealth (owner_id, cash_cents, savings_cents, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET
		   cash_cents = excluded.cash_cents,
		   savings_cents = excluded.savings_cents,
		   updated_at = excluded.updated_at`,
		w.OwnerID, w.Cash.Cents, w.Savings.Cents, w.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert wealth: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Wealth(ctx context.Context, ownerID string) (core.Wealth, error) {
	var w core.Wealth
	var updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id, cash_cents, savings_cents, updated_at FROM wealth WHERE owner_id = ?`, ownerID).
		Scan(&w.OwnerID, &w.Cash.Cents, &w.Savings.Cents, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wealth{}, core.ErrNotFound
	}
	if err != nil {
		return core.Wealth{}, fmt.Errorf("get wealth: %w", err)
	}
	w.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return w, nil
}

// --- helpers ---

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type goalScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row goalScanner) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	var createdAt int64
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &createdAt); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan savings goal: %w", err)
	}
	g.CreatedAt = time.UnixMilli(createdAt).UTC()
	return g, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var categoryID sql.NullString
		var dateMs, createdMs int64
		if err := rows.Scan(&t.ID, &t.OwnerID, &categoryID, &t.Description, &t.Amount.Cents, &dateMs, &createdMs); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.CategoryID = categoryID.String
		t.Date = time.UnixMilli(dateMs).UTC()
		t.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
