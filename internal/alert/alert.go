// Package alert derives budget alert state from transaction totals and
// configured limits. Evaluation is level-triggered: state is recomputed
// from scratch on every call and never remembers earlier firings, so
// debouncing repeated notifications is up to the caller.
package alert

import (
	"fmt"

	"finboard/internal/core"
	"finboard/internal/report"
)

// GlobalMessage is shown when total expense exceeds the total budget
// limit.
const GlobalMessage = "Budget exceeded! Please review your expenses."

// SeverityWarning is the only severity budget alerts currently use.
const SeverityWarning = "warning"

// CategoryAlert flags a single category over its configured limit.
type CategoryAlert struct {
	Category string     `json:"category"`
	Limit    core.Money `json:"limit"`
	Spent    core.Money `json:"spent"`
	Message  string     `json:"message"`
}

// State is the full alert picture for one evaluation.
type State struct {
	Visible    bool            `json:"isVisible"`
	Message    string          `json:"message"`
	Severity   string          `json:"severity"`
	Categories []CategoryAlert `json:"categories"`
}

// Evaluate recomputes alert state from the transaction list and
// settings. With alerts disabled the returned state is empty and not
// visible regardless of spend.
func Evaluate(txs []core.Transaction, settings core.Settings) State {
	if !settings.AlertsEnabled {
		return State{}
	}

	var state State
	totals := report.Summarize(txs)
	if totals.Expense.Cents > settings.TotalBudgetLimit.Cents {
		state.Visible = true
		state.Message = GlobalMessage
		state.Severity = SeverityWarning
	}

	for _, point := range report.CategorySeries(txs) {
		limit, ok := settings.CategoryLimits[point.Category]
		if !ok {
			continue
		}
		if point.Expense.Cents > limit.Cents {
			state.Categories = append(state.Categories, CategoryAlert{
				Category: point.Category,
				Limit:    limit,
				Spent:    point.Expense,
				Message: fmt.Sprintf("You have exceeded your %s budget: spent %s of %s",
					point.Category, point.Expense.Decimal(), limit.Decimal()),
			})
		}
	}
	if len(state.Categories) > 0 {
		state.Visible = true
		if state.Severity == "" {
			state.Severity = SeverityWarning
		}
	}
	return state
}
