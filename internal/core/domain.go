package core

import (
	"errors"
	"strings"
	"time"
)

// CategoryRole says how transactions in a category count against a budget.
// Income transactions reduce net spending; everything else increases it.
type CategoryRole string

const (
	RoleExpense CategoryRole = "expense"
	RoleIncome  CategoryRole = "income"
)

type (
	Money struct {
		Cents int64
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID      string
		OwnerID string
		Name    string
		Role    CategoryRole
	}

	// Transaction is a single money movement. CategoryID may be empty when
	// the category was deleted or never assigned; such rows count as expenses.
	Transaction struct {
		ID          string
		OwnerID     string
		CategoryID  string
		Description string
		Amount      Money
		Date        time.Time
		CreatedAt   time.Time
	}

	// Budget allocates an amount over a closed date interval [StartDate, EndDate].
	Budget struct {
		ID         string
		OwnerID    string
		CategoryID string
		Amount     Money
		StartDate  time.Time
		EndDate    time.Time
	}

	SavingsGoal struct {
		ID            string
		OwnerID       string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		CreatedAt     time.Time
	}

	CompletedSavingsGoal struct {
		ID           string
		OwnerID      string
		Name         string
		TargetAmount Money
		CompletedAt  time.Time
	}

	Wealth struct {
		OwnerID   string
		Cash      Money
		Savings   Money
		UpdatedAt time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidRole      = errors.New("invalid category role")
	ErrInvalidInterval  = errors.New("end date before start date")
	ErrNotFound         = errors.New("not found")
	ErrCategoryInUse    = errors.New("category is in use")
	ErrEmailTaken       = errors.New("email already registered")
)

func (r CategoryRole) Validate() error {
	switch r {
	case RoleExpense, RoleIncome:
		return nil
	default:
		return ErrInvalidRole
	}
}

// IsIncome reports whether the role inverts the transaction sign in
// net-spending math.
func (r CategoryRole) IsIncome() bool {
	return r == RoleIncome
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return c.Role.Validate()
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return errors.New("budget dates cannot be zero")
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrInvalidInterval
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return g.TargetAmount.Validate()
}

// Completed reports whether the goal has reached its target.
func (g SavingsGoal) Completed() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}
