package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wisewallet/internal/core"
)

// WealthService tracks the owner's cash and savings balances as a single
// upsertable row.
type WealthService struct {
	wealth   WealthStore
	notifier ChangeNotifier
}

func NewWealthService(wealth WealthStore, notifier ChangeNotifier) *WealthService {
	return &WealthService{wealth: wealth, notifier: notifier}
}

// Wealth returns the stored balances, or a zeroed row when nothing has been
// saved yet.
func (s *WealthService) Wealth(ctx context.Context, ownerID string) (core.Wealth, error) {
	w, err := s.wealth.Wealth(ctx, ownerID)
	if err == core.ErrNotFound {
		return core.Wealth{OwnerID: ownerID}, nil
	}
	if err != nil {
		return core.Wealth{}, fmt.Errorf("get wealth: %w", err)
	}
	return w, nil
}

func (s *WealthService) SetWealth(ctx context.Context, ownerID, cash, savings string) (core.Wealth, error) {
	cashCents, err := parseBalance(cash)
	if err != nil {
		return core.Wealth{}, err
	}
	savingsCents, err := parseBalance(savings)
	if err != nil {
		return core.Wealth{}, err
	}

	w := core.Wealth{
		OwnerID:   ownerID,
		Cash:      core.Money{Cents: cashCents},
		Savings:   core.Money{Cents: savingsCents},
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.wealth.UpsertWealth(ctx, w); err != nil {
		return core.Wealth{}, fmt.Errorf("set wealth: %w", err)
	}
	if s.notifier != nil {
		s.notifier.NotifyChange(ctx, "wealth", ownerID, "update")
	}
	return w, nil
}

// parseBalance accepts the same decimal formats as transaction amounts but
// additionally allows zero, since an empty balance is a valid state.
func parseBalance(s string) (int64, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, nil
	}
	switch strings.ReplaceAll(t, ",", ".") {
	case "0", "0.0", "0.00":
		return 0, nil
	}
	return core.ParseDecimalToCents(t)
}
