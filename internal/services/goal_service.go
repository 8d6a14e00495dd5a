package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"wisewallet/internal/core"
)

// GoalService manages savings goals. A goal that reaches its target is
// archived into the completed list.
type GoalService struct {
	goals    GoalStore
	notifier ChangeNotifier
}

func NewGoalService(goals GoalStore, notifier ChangeNotifier) *GoalService {
	return &GoalService{goals: goals, notifier: notifier}
}

func (s *GoalService) AddGoal(ctx context.Context, ownerID, name, target string) (core.SavingsGoal, error) {
	cents, err := core.ParseDecimalToCents(target)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	g := core.SavingsGoal{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(name),
		TargetAmount: core.Money{Cents: cents},
		CreatedAt:    time.Now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	if err := s.goals.CreateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("add goal: %w", err)
	}
	s.notify(ctx, ownerID, "create")
	return g, nil
}

func (s *GoalService) ListGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error) {
	out, err := s.goals.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return out, nil
}

func (s *GoalService) ListCompletedGoals(ctx context.Context, ownerID string) ([]core.CompletedSavingsGoal, error) {
	out, err := s.goals.ListCompletedGoals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list completed goals: %w", err)
	}
	return out, nil
}

// Contribute adds an amount to a goal. Reaching the target moves the goal
// into the completed archive and reports completion.
func (s *GoalService) Contribute(ctx context.Context, ownerID, id, amount string) (core.SavingsGoal, bool, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.SavingsGoal{}, false, err
	}

	g, err := s.goals.Goal(ctx, ownerID, id)
	if err != nil {
		if err == core.ErrNotFound {
			return core.SavingsGoal{}, false, err
		}
		return core.SavingsGoal{}, false, fmt.Errorf("contribute to goal: %w", err)
	}

	g.CurrentAmount.Cents += cents
	if g.Completed() {
		if err := s.goals.CompleteGoal(ctx, g, time.Now().UTC()); err != nil {
			return core.SavingsGoal{}, false, fmt.Errorf("complete goal: %w", err)
		}
		s.notify(ctx, ownerID, "complete")
		return g, true, nil
	}

	if err := s.goals.UpdateGoalCurrent(ctx, ownerID, id, g.CurrentAmount.Cents); err != nil {
		return core.SavingsGoal{}, false, fmt.Errorf("contribute to goal: %w", err)
	}
	s.notify(ctx, ownerID, "update")
	return g, false, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, ownerID, id string) error {
	if err := s.goals.DeleteGoal(ctx, ownerID, id); err != nil {
		if err == core.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete goal: %w", err)
	}
	s.notify(ctx, ownerID, "delete")
	return nil
}

func (s *GoalService) notify(ctx context.Context, ownerID, op string) {
	if s.notifier != nil {
		s.notifier.NotifyChange(ctx, "savings_goals", ownerID, op)
	}
}
