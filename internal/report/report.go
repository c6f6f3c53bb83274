// Package report computes derived analytics over a transaction list:
// income/expense totals, time-bucketed trend series, per-category
// breakdowns, cumulative balance and budget-vs-actual comparisons.
//
// Every function in this package is pure: output is fully determined by
// the transactions, settings and asOf date passed in, inputs are never
// mutated, and nothing is cached between calls.
package report

import (
	"sort"

	"finboard/internal/classify"
	"finboard/internal/core"
)

// Totals is the income/expense/balance summary of a transaction list.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// TrendPoint is one time bucket of the income-vs-expense trend.
type TrendPoint struct {
	BucketKey string     `json:"key"`
	Income    core.Money `json:"income"`
	Expense   core.Money `json:"expense"`
}

// CategoryPoint sums income and expense for one category.
type CategoryPoint struct {
	Category string     `json:"category"`
	Income   core.Money `json:"income"`
	Expense  core.Money `json:"expense"`
}

// BalancePoint is the running balance after one transaction.
type BalancePoint struct {
	Date    core.Date  `json:"date"`
	Balance core.Money `json:"balance"`
}

// BudgetPoint compares a configured limit against actual spend.
type BudgetPoint struct {
	Key    string     `json:"key"`
	Budget core.Money `json:"budget"`
	Actual core.Money `json:"actual"`
}

// Summarize computes totals over the whole list. An empty list yields
// all zeroes.
func Summarize(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income.Cents += tx.Amount.Cents
		case core.Expense:
			t.Expense.Cents += tx.Amount.Cents
		}
	}
	t.Balance.Cents = t.Income.Cents - t.Expense.Cents
	return t
}

// TrendSeries buckets transactions by frame and returns one point per
// bucket that has at least one transaction, ascending by the bucket's
// chronological start. Gaps are not filled in.
func TrendSeries(txs []core.Transaction, frame core.TimeFrame) []TrendPoint {
	type bucket struct {
		point TrendPoint
		start int64
	}
	byKey := make(map[string]*bucket)
	for _, tx := range txs {
		key := BucketKey(tx.Date, frame)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{
				point: TrendPoint{BucketKey: key},
				start: BucketStart(tx.Date, frame).Unix(),
			}
			byKey[key] = b
		}
		switch tx.Type {
		case core.Income:
			b.point.Income.Cents += tx.Amount.Cents
		case core.Expense:
			b.point.Expense.Cents += tx.Amount.Cents
		}
	}

	buckets := make([]*bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].start < buckets[j].start })

	out := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		out[i] = b.point
	}
	return out
}

// CategorySeries returns one point per distinct category, in the order
// each category is first seen in the list.
func CategorySeries(txs []core.Transaction) []CategoryPoint {
	index := make(map[string]int)
	var out []CategoryPoint
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryPoint{Category: tx.Category})
		}
		switch tx.Type {
		case core.Income:
			out[i].Income.Cents += tx.Amount.Cents
		case core.Expense:
			out[i].Expense.Cents += tx.Amount.Cents
		}
	}
	return out
}

// BalanceSeries sorts transactions ascending by date (stable, so same-day
// transactions keep their relative order) and emits the cumulative
// balance after each one. Same-day transactions produce adjacent points,
// never a merged one.
func BalanceSeries(txs []core.Transaction) []BalancePoint {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Time.Before(sorted[j].Date.Time)
	})

	out := make([]BalancePoint, 0, len(sorted))
	var balance int64
	for _, tx := range sorted {
		if tx.Type == core.Income {
			balance += tx.Amount.Cents
		} else {
			balance -= tx.Amount.Cents
		}
		out = append(out, BalancePoint{Date: tx.Date, Balance: core.Money{Cents: balance}})
	}
	return out
}

// BudgetSeries compares configured limits against actual expense spend.
// Per configured category it sums expenses whose bucket starts on or
// after the bucket containing asOf; bucket starts are compared as dates,
// which keeps the comparison correct across year boundaries. A final
// synthetic Total row compares the total budget limit against expense in
// the asOf bucket only.
func BudgetSeries(txs []core.Transaction, settings core.Settings, asOf core.Date, frame core.TimeFrame) []BudgetPoint {
	currentStart := BucketStart(asOf, frame)
	currentKey := BucketKey(asOf, frame)

	out := make([]BudgetPoint, 0, len(settings.CategoryLimits)+1)
	for _, category := range limitOrder(settings.CategoryLimits) {
		var actual int64
		for _, tx := range txs {
			if tx.Type != core.Expense || tx.Category != category {
				continue
			}
			if !BucketStart(tx.Date, frame).Before(currentStart) {
				actual += tx.Amount.Cents
			}
		}
		out = append(out, BudgetPoint{
			Key:    currentKey + "_" + category,
			Budget: settings.CategoryLimits[category],
			Actual: core.Money{Cents: actual},
		})
	}

	var total int64
	for _, tx := range txs {
		if tx.Type == core.Expense && BucketStart(tx.Date, frame).Equal(currentStart) {
			total += tx.Amount.Cents
		}
	}
	out = append(out, BudgetPoint{
		Key:    "Total_" + currentKey,
		Budget: settings.TotalBudgetLimit,
		Actual: core.Money{Cents: total},
	})
	return out
}

// limitOrder returns the configured categories in enumeration order,
// with any stragglers outside the enumeration appended alphabetically.
func limitOrder(limits map[string]core.Money) []string {
	out := make([]string, 0, len(limits))
	for _, c := range classify.ExpenseCategories {
		if _, ok := limits[c]; ok {
			out = append(out, c)
		}
	}
	if _, ok := limits[classify.FallbackCategory]; ok {
		out = append(out, classify.FallbackCategory)
	}
	if len(out) < len(limits) {
		known := make(map[string]bool, len(out))
		for _, c := range out {
			known[c] = true
		}
		var rest []string
		for c := range limits {
			if !known[c] {
				rest = append(rest, c)
			}
		}
		sort.Strings(rest)
		out = append(out, rest...)
	}
	return out
}
