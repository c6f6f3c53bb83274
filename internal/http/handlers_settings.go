package http

import (
	"net/http"

	"finboard/internal/classify"
	"finboard/internal/core"
)

type settingsPayload struct {
	TotalBudgetLimit core.Money            `json:"totalBudgetLimit"`
	CategoryLimits   map[string]core.Money `json:"categoryLimits"`
	AlertsEnabled    bool                  `json:"alertsEnabled"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, settingsPayload{
			TotalBudgetLimit: settings.TotalBudgetLimit,
			CategoryLimits:   settings.CategoryLimits,
			AlertsEnabled:    settings.AlertsEnabled,
		})

	case http.MethodPut:
		var req settingsPayload
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		for category := range req.CategoryLimits {
			if !classify.ValidExpenseCategory(category) {
				writeError(w, http.StatusBadRequest, "unknown category: "+category)
				return
			}
		}
		next := core.Settings{
			TotalBudgetLimit: req.TotalBudgetLimit,
			CategoryLimits:   req.CategoryLimits,
			AlertsEnabled:    req.AlertsEnabled,
		}
		if next.CategoryLimits == nil {
			next.CategoryLimits = map[string]core.Money{}
		}
		if err := s.settings.Save(r.Context(), next); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, req)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCategories exposes the expense category enumeration and the
// keyword rules that drive auto-classification.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": classify.ExpenseCategories,
		"fallback":   classify.FallbackCategory,
		"rules":      classify.Rules(),
	})
}
