package core

// MonthSummary is the result of reconciling a month: the month's
// transactions (newest first) and the budget available after carrying over
// last month's surplus.
type MonthSummary struct {
	Transactions    []Transaction
	EffectiveBudget Money
}

// BudgetOverview is a compact health check for the current month.
type BudgetOverview struct {
	TotalBudget   Money
	Spent         Money
	Remaining     Money
	UpcomingBills []Transaction
}

// SeriesPoint is one month of aggregated income and expenses, for charts.
type SeriesPoint struct {
	Year    int
	Month   int // 1-12
	Income  Money
	Expense Money
}
