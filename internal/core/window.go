package core

import "time"

// MonthWindow returns the inclusive bounds of the calendar month containing
// ref: the first day at 00:00:00.000 and the last day at 23:59:59.999, in
// ref's location.
func MonthWindow(ref time.Time) (start, end time.Time) {
	start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// PreviousMonthWindow returns the bounds of the month before the one
// containing ref. Rolls back across year boundaries.
func PreviousMonthWindow(ref time.Time) (start, end time.Time) {
	first, _ := MonthWindow(ref)
	return MonthWindow(first.AddDate(0, -1, 0))
}
