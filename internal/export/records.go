package export

import (
	"finboard/internal/core"
	"finboard/internal/report"
)

// Header sets for the built-in report exports.
var (
	TransactionHeaders = []string{"id", "description", "amount", "type", "category", "date"}
	TrendHeaders       = []string{"key", "income", "expense"}
	CategoryHeaders    = []string{"category", "income", "expense"}
	BalanceHeaders     = []string{"date", "balance"}
	BudgetHeaders      = []string{"key", "budget", "actual"}
)

func TransactionRecords(txs []core.Transaction) []Record {
	out := make([]Record, len(txs))
	for i, tx := range txs {
		out[i] = Record{
			"id":          tx.ID,
			"description": tx.Description,
			"amount":      tx.Amount.Decimal(),
			"type":        string(tx.Type),
			"category":    tx.Category,
			"date":        tx.Date.String(),
		}
	}
	return out
}

func TrendRecords(points []report.TrendPoint) []Record {
	out := make([]Record, len(points))
	for i, p := range points {
		out[i] = Record{
			"key":     p.BucketKey,
			"income":  p.Income.Decimal(),
			"expense": p.Expense.Decimal(),
		}
	}
	return out
}

func CategoryRecords(points []report.CategoryPoint) []Record {
	out := make([]Record, len(points))
	for i, p := range points {
		out[i] = Record{
			"category": p.Category,
			"income":   p.Income.Decimal(),
			"expense":  p.Expense.Decimal(),
		}
	}
	return out
}

func BalanceRecords(points []report.BalancePoint) []Record {
	out := make([]Record, len(points))
	for i, p := range points {
		out[i] = Record{
			"date":    p.Date.String(),
			"balance": p.Balance.Decimal(),
		}
	}
	return out
}

func BudgetRecords(points []report.BudgetPoint) []Record {
	out := make([]Record, len(points))
	for i, p := range points {
		out[i] = Record{
			"key":    p.Key,
			"budget": p.Budget.Decimal(),
			"actual": p.Actual.Decimal(),
		}
	}
	return out
}
