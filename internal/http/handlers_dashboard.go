package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// handleDashboard serves the reconciled month view. Results are cached per
// owner and month; a snapshot computed against a stale generation is
// never stored.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ref, err := parseMonthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID := OwnerID(r.Context())
	year, month := ref.Year(), ref.Month()

	if summary, ok := s.snapshots.Get(ownerID, year, month); ok {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "year", year, "month", int(month))
		writeJSON(w, http.StatusOK, newSummaryJSON(year, month, summary))
		return
	}

	generation := s.snapshots.Generation(ownerID)

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()
	summary, err := s.reconcile.MonthSummary(ctx, ownerID, ref)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard reconciliation failed", "error", err, "year", year, "month", int(month))
		writeError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}

	if !s.snapshots.Put(ownerID, year, month, summary, generation) {
		slog.DebugContext(r.Context(), "Stale dashboard snapshot discarded", "year", year, "month", int(month))
	}

	writeJSON(w, http.StatusOK, newSummaryJSON(year, month, summary))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.insights.Overview(r.Context(), OwnerID(r.Context()), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load overview")
		return
	}
	writeJSON(w, http.StatusOK, newOverviewJSON(overview))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonthsParam(r, s.seriesMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := s.insights.Series(r.Context(), OwnerID(r.Context()), time.Now(), months)
	if err != nil {
		slog.ErrorContext(r.Context(), "Series failed", "error", err, "months", months)
		writeError(w, http.StatusInternalServerError, "could not load series")
		return
	}
	writeJSON(w, http.StatusOK, newSeriesJSON(points))
}
