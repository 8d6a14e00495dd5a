// This file implements JSON response encoding and the mapping from domain
// errors to HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"wisewallet/internal/auth"
	"wisewallet/internal/core"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError sends a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrCategoryInUse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidRole),
		errors.Is(err, core.ErrInvalidInterval):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Wire representations. Amounts carry both raw cents and a formatted
// decimal string so clients do not have to redo the math.

type amountJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func newAmountJSON(m core.Money) amountJSON {
	return amountJSON{Cents: m.Cents, Formatted: m.String()}
}

type categoryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func newCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Role: string(c.Role)}
}

func newCategoryListJSON(cats []core.Category) []categoryJSON {
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryJSON(c))
	}
	return out
}

type transactionJSON struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id,omitempty"`
	Description string     `json:"description"`
	Amount      amountJSON `json:"amount"`
	Date        string     `json:"date"`
}

func newTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Amount:      newAmountJSON(t.Amount),
		Date:        t.Date.UTC().Format(time.RFC3339),
	}
}

func newTransactionListJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionJSON(t))
	}
	return out
}

type budgetJSON struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"category_id,omitempty"`
	Amount     amountJSON `json:"amount"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
}

func newBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     newAmountJSON(b.Amount),
		StartDate:  b.StartDate.UTC().Format("2006-01-02"),
		EndDate:    b.EndDate.UTC().Format("2006-01-02"),
	}
}

func newBudgetListJSON(budgets []core.Budget) []budgetJSON {
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, newBudgetJSON(b))
	}
	return out
}

type goalJSON struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  amountJSON `json:"target_amount"`
	CurrentAmount amountJSON `json:"current_amount"`
	Completed     bool       `json:"completed"`
}

func newGoalJSON(g core.SavingsGoal) goalJSON {
	return goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  newAmountJSON(g.TargetAmount),
		CurrentAmount: newAmountJSON(g.CurrentAmount),
		Completed:     g.Completed(),
	}
}

type completedGoalJSON struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	TargetAmount amountJSON `json:"target_amount"`
	CompletedAt  string     `json:"completed_at"`
}

func newCompletedGoalJSON(g core.CompletedSavingsGoal) completedGoalJSON {
	return completedGoalJSON{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: newAmountJSON(g.TargetAmount),
		CompletedAt:  g.CompletedAt.UTC().Format(time.RFC3339),
	}
}

type wealthJSON struct {
	Cash      amountJSON `json:"cash"`
	Savings   amountJSON `json:"savings"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

func newWealthJSON(wlt core.Wealth) wealthJSON {
	out := wealthJSON{
		Cash:    newAmountJSON(wlt.Cash),
		Savings: newAmountJSON(wlt.Savings),
	}
	if !wlt.UpdatedAt.IsZero() {
		out.UpdatedAt = wlt.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

type summaryJSON struct {
	Year            int               `json:"year"`
	Month           int               `json:"month"`
	EffectiveBudget amountJSON        `json:"effective_budget"`
	Transactions    []transactionJSON `json:"transactions"`
}

func newSummaryJSON(year int, month time.Month, s core.MonthSummary) summaryJSON {
	return summaryJSON{
		Year:            year,
		Month:           int(month),
		EffectiveBudget: newAmountJSON(s.EffectiveBudget),
		Transactions:    newTransactionListJSON(s.Transactions),
	}
}

type overviewJSON struct {
	TotalBudget   amountJSON        `json:"total_budget"`
	Spent         amountJSON        `json:"spent"`
	Remaining     amountJSON        `json:"remaining"`
	UpcomingBills []transactionJSON `json:"upcoming_bills"`
}

func newOverviewJSON(o core.BudgetOverview) overviewJSON {
	return overviewJSON{
		TotalBudget:   newAmountJSON(o.TotalBudget),
		Spent:         newAmountJSON(o.Spent),
		Remaining:     newAmountJSON(o.Remaining),
		UpcomingBills: newTransactionListJSON(o.UpcomingBills),
	}
}

type seriesPointJSON struct {
	Year    int        `json:"year"`
	Month   int        `json:"month"`
	Income  amountJSON `json:"income"`
	Expense amountJSON `json:"expense"`
}

func newSeriesJSON(points []core.SeriesPoint) []seriesPointJSON {
	out := make([]seriesPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, seriesPointJSON{
			Year:    p.Year,
			Month:   p.Month,
			Income:  newAmountJSON(p.Income),
			Expense: newAmountJSON(p.Expense),
		})
	}
	return out
}
