package http

import (
	"net/http"

	"finboard/internal/alert"
	"finboard/internal/core"
	"finboard/internal/report"
)

// handleDashboard returns the one-call summary the dashboard screen
// renders: totals, alert state and the month-over-month recommendation.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	txs, err := s.txStore.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	asOf := core.Date{Time: s.now()}
	writeJSON(w, http.StatusOK, map[string]any{
		"totals":         report.Summarize(txs),
		"alert":          alert.Evaluate(txs, settings),
		"recommendation": report.Recommendation(txs, asOf),
	})
}

func (s *Server) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	frame, err := queryTimeFrame(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.txStore.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"time_frame": frame,
		"points":     report.TrendSeries(txs, frame),
	})
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	txs, err := s.txStore.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"points": report.CategorySeries(txs),
	})
}

func (s *Server) handleBalanceReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	txs, err := s.txStore.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"points": report.BalanceSeries(txs),
	})
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	frame, err := queryTimeFrame(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	asOf := core.Date{Time: s.now()}
	if d, ok, err := queryDate(r, "as_of"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		asOf = d
	}

	txs, err := s.txStore.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"time_frame": frame,
		"as_of":      asOf,
		"points":     report.BudgetSeries(txs, settings, asOf, frame),
	})
}
