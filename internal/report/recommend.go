package report

import (
	"fmt"
	"time"

	"finboard/internal/core"
)

// Recommendation compares expense totals of the asOf month against the
// previous month and produces a short advisory message.
func Recommendation(txs []core.Transaction, asOf core.Date) string {
	thisMonth := time.Date(asOf.Time.Year(), asOf.Time.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	current := monthExpense(txs, thisMonth)
	previous := monthExpense(txs, lastMonth)

	switch {
	case previous == 0:
		return "Great job! It seems you didn't have any expenses last month. Keep recording your expenses!"
	case current > previous:
		pct := float64(current-previous) / float64(previous) * 100
		return fmt.Sprintf("Your expenses have increased by %.2f%% compared to last month. Consider reviewing your expenses.", pct)
	case current < previous:
		pct := float64(previous-current) / float64(previous) * 100
		return fmt.Sprintf("Congratulations! Your expenses have decreased by %.2f%% compared to last month. Keep it up!", pct)
	default:
		return "Your spending hasn't changed compared to last month. Keep an eye on your budget!"
	}
}

func monthExpense(txs []core.Transaction, monthStart time.Time) int64 {
	var sum int64
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if tx.Date.Time.Year() == monthStart.Year() && tx.Date.Time.Month() == monthStart.Month() {
			sum += tx.Amount.Cents
		}
	}
	return sum
}
