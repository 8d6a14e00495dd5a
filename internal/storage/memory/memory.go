// Package memory provides a mutex-guarded in-memory store. It backs tests
// and the storage-free development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"wisewallet/internal/core"
)

type Store struct {
	mu             sync.Mutex
	users          map[string]core.User
	categories     map[string]core.Category
	transactions   map[string]core.Transaction
	budgets        map[string]core.Budget
	goals          map[string]core.SavingsGoal
	completedGoals map[string]core.CompletedSavingsGoal
	wealth         map[string]core.Wealth
}

func New() *Store {
	return &Store{
		users:          make(map[string]core.User),
		categories:     make(map[string]core.Category),
		transactions:   make(map[string]core.Transaction),
		budgets:        make(map[string]core.Budget),
		goals:          make(map[string]core.SavingsGoal),
		completedGoals: make(map[string]core.CompletedSavingsGoal),
		wealth:         make(map[string]core.Wealth),
	}
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

// --- categories ---

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.CategoryID == id {
			return core.ErrCategoryInUse
		}
	}
	for _, b := range s.budgets {
		if b.CategoryID == id {
			return core.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

// --- transactions ---

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) TransactionsInRange(_ context.Context, ownerID string, start, end time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) RecentTransactions(_ context.Context, ownerID string, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpcomingTransactions(_ context.Context, ownerID string, after time.Time, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && t.Date.After(after) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) DeleteAllTransactions(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.transactions {
		if t.OwnerID == ownerID {
			delete(s.transactions, id)
		}
	}
	return nil
}

// --- budgets ---

func (s *Store) CreateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ID] = b
	return nil
}

// BudgetsOverlapping matches budgets whose closed interval intersects
// [start, end]. An empty ownerID skips the owner filter.
func (s *Store) BudgetsOverlapping(_ context.Context, ownerID string, start, end time.Time) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if ownerID != "" && b.OwnerID != ownerID {
			continue
		}
		if b.EndDate.Before(start) || b.StartDate.After(end) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

// --- savings goals ---

func (s *Store) CreateGoal(_ context.Context, g core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.ID] = g
	return nil
}

func (s *Store) ListGoals(_ context.Context, ownerID string) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.SavingsGoal
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Goal(_ context.Context, ownerID, id string) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	return g, nil
}

func (s *Store) UpdateGoalCurrent(_ context.Context, ownerID, id string, currentCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.ErrNotFound
	}
	g.CurrentAmount.Cents = currentCents
	s.goals[id] = g
	return nil
}

func (s *Store) CompleteGoal(_ context.Context, g core.SavingsGoal, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.goals[g.ID]
	if !ok || stored.OwnerID != g.OwnerID {
		return core.ErrNotFound
	}
	s.completedGoals[g.ID] = core.CompletedSavingsGoal{
		ID:           g.ID,
		OwnerID:      g.OwnerID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		CompletedAt:  completedAt,
	}
	delete(s.goals, g.ID)
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) ListCompletedGoals(_ context.Context, ownerID string) ([]core.CompletedSavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CompletedSavingsGoal
	for _, g := range s.completedGoals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

// --- wealth ---

func (s *Store) UpsertWealth(_ context.Context, w core.Wealth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wealth[w.OwnerID] = w
	return nil
}

func (s *Store) Wealth(_ context.Context, ownerID string) (core.Wealth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wealth[ownerID]
	if !ok {
		return core.Wealth{}, core.ErrNotFound
	}
	return w, nil
}
