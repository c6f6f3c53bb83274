package report

import (
	"testing"

	"finboard/internal/core"
)

func tx(desc string, cents int64, typ core.TransactionType, category string, date core.Date) core.Transaction {
	return core.Transaction{
		ID:          desc,
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        typ,
		Category:    category,
		Date:        date,
	}
}

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		tx("salary", 250000, core.Income, "Salary", core.NewDate(2025, 1, 5)),
		tx("groceries", 8050, core.Expense, "Food", core.NewDate(2025, 1, 7)),
		tx("rent", 90000, core.Expense, "Housing", core.NewDate(2025, 2, 1)),
		tx("dinner", 4500, core.Expense, "Food", core.NewDate(2025, 2, 14)),
		tx("freelance", 40000, core.Income, "Side work", core.NewDate(2025, 2, 14)),
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleTransactions())
	if got.Income.Cents != 290000 {
		t.Fatalf("income = %d, want 290000", got.Income.Cents)
	}
	if got.Expense.Cents != 102550 {
		t.Fatalf("expense = %d, want 102550", got.Expense.Cents)
	}
	if got.Balance.Cents != got.Income.Cents-got.Expense.Cents {
		t.Fatalf("balance = %d, want income-expense", got.Balance.Cents)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Income.Cents != 0 || got.Expense.Cents != 0 || got.Balance.Cents != 0 {
		t.Fatalf("expected all-zero totals, got %+v", got)
	}
}

func TestTrendSeriesConservesAmounts(t *testing.T) {
	txs := sampleTransactions()
	totals := Summarize(txs)
	for _, frame := range []core.TimeFrame{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		var income, expense int64
		for _, p := range TrendSeries(txs, frame) {
			income += p.Income.Cents
			expense += p.Expense.Cents
		}
		if income != totals.Income.Cents || expense != totals.Expense.Cents {
			t.Fatalf("%s: bucketed %d/%d, totals %d/%d", frame, income, expense, totals.Income.Cents, totals.Expense.Cents)
		}
	}
}

func TestTrendSeriesMonthlyBuckets(t *testing.T) {
	got := TrendSeries(sampleTransactions(), core.Monthly)
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[0].BucketKey != "2025-01" || got[1].BucketKey != "2025-02" {
		t.Fatalf("bucket keys = %q, %q", got[0].BucketKey, got[1].BucketKey)
	}
	if got[0].Income.Cents != 250000 || got[0].Expense.Cents != 8050 {
		t.Fatalf("january = %+v", got[0])
	}
}

func TestTrendSeriesWeeklySundayAligned(t *testing.T) {
	// 2025-01-07 is a Tuesday; its week starts Sunday 2025-01-05.
	txs := []core.Transaction{
		tx("a", 100, core.Expense, "Food", core.NewDate(2025, 1, 7)),
		tx("b", 200, core.Expense, "Food", core.NewDate(2025, 1, 5)),
		tx("c", 300, core.Expense, "Food", core.NewDate(2025, 1, 4)),
	}
	got := TrendSeries(txs, core.Weekly)
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[0].BucketKey != "2024-12-29" || got[0].Expense.Cents != 300 {
		t.Fatalf("first bucket = %+v", got[0])
	}
	if got[1].BucketKey != "2025-01-05" || got[1].Expense.Cents != 300 {
		t.Fatalf("second bucket = %+v", got[1])
	}
}

func TestCategorySeriesFirstSeenOrder(t *testing.T) {
	got := CategorySeries(sampleTransactions())
	want := []string{"Salary", "Food", "Housing", "Side work"}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Category != want[i] {
			t.Fatalf("category[%d] = %q, want %q", i, p.Category, want[i])
		}
	}
	if got[1].Expense.Cents != 12550 {
		t.Fatalf("Food expense = %d, want 12550", got[1].Expense.Cents)
	}
}

func TestBalanceSeries(t *testing.T) {
	txs := sampleTransactions()
	got := BalanceSeries(txs)
	if len(got) != len(txs) {
		t.Fatalf("got %d points, want %d", len(got), len(txs))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Time.Before(got[i-1].Date.Time) {
			t.Fatalf("points not ordered by date at index %d", i)
		}
	}
	final := got[len(got)-1].Balance.Cents
	if want := Summarize(txs).Balance.Cents; final != want {
		t.Fatalf("final balance = %d, want %d", final, want)
	}
}

func TestBalanceSeriesStableOnSameDate(t *testing.T) {
	// Both dated 2025-02-14; insertion order must survive the sort.
	got := BalanceSeries(sampleTransactions())
	if got[3].Balance.Cents != 147450 { // after "dinner"
		t.Fatalf("third point balance = %d, want 147450", got[3].Balance.Cents)
	}
	if got[4].Balance.Cents != 187450 { // after "freelance"
		t.Fatalf("fourth point balance = %d, want 187450", got[4].Balance.Cents)
	}
}

func TestBudgetSeries(t *testing.T) {
	settings := core.Settings{
		TotalBudgetLimit: core.Money{Cents: 100000},
		CategoryLimits: map[string]core.Money{
			"Food":    {Cents: 10000},
			"Housing": {Cents: 95000},
		},
		AlertsEnabled: true,
	}
	asOf := core.NewDate(2025, 2, 20)
	got := BudgetSeries(sampleTransactions(), settings, asOf, core.Monthly)
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}

	// Enumeration order puts Food before Housing.
	if got[0].Key != "2025-02_Food" {
		t.Fatalf("key[0] = %q", got[0].Key)
	}
	// Only the February dinner is on-or-after the current bucket.
	if got[0].Actual.Cents != 4500 {
		t.Fatalf("Food actual = %d, want 4500", got[0].Actual.Cents)
	}
	if got[1].Key != "2025-02_Housing" || got[1].Actual.Cents != 90000 {
		t.Fatalf("Housing point = %+v", got[1])
	}
	// Total row counts expenses in the current bucket only.
	if got[2].Key != "Total_2025-02" || got[2].Actual.Cents != 94500 {
		t.Fatalf("total point = %+v", got[2])
	}
	if got[2].Budget.Cents != 100000 {
		t.Fatalf("total budget = %d", got[2].Budget.Cents)
	}
}

func TestBudgetSeriesYearBoundary(t *testing.T) {
	// A January 2025 expense is on-or-after a December 2024 asOf bucket;
	// formatted-key comparison would get this wrong.
	txs := []core.Transaction{
		tx("jan", 1000, core.Expense, "Food", core.NewDate(2025, 1, 10)),
		tx("nov", 500, core.Expense, "Food", core.NewDate(2024, 11, 10)),
	}
	settings := core.Settings{
		TotalBudgetLimit: core.Money{Cents: 5000},
		CategoryLimits:   map[string]core.Money{"Food": {Cents: 2000}},
	}
	got := BudgetSeries(txs, settings, core.NewDate(2024, 12, 15), core.Monthly)
	if got[0].Actual.Cents != 1000 {
		t.Fatalf("Food actual = %d, want 1000 (January counted, November not)", got[0].Actual.Cents)
	}
	if got[1].Actual.Cents != 0 {
		t.Fatalf("total actual = %d, want 0 (no December expenses)", got[1].Actual.Cents)
	}
}

func TestBudgetSeriesExcludesIncomeFromTotal(t *testing.T) {
	txs := []core.Transaction{
		tx("pay", 5000, core.Income, "Salary", core.NewDate(2025, 3, 1)),
		tx("food", 700, core.Expense, "Food", core.NewDate(2025, 3, 2)),
	}
	settings := core.Settings{TotalBudgetLimit: core.Money{Cents: 1000}}
	got := BudgetSeries(txs, settings, core.NewDate(2025, 3, 10), core.Monthly)
	if len(got) != 1 {
		t.Fatalf("got %d points, want 1", len(got))
	}
	if got[0].Actual.Cents != 700 {
		t.Fatalf("total actual = %d, want 700", got[0].Actual.Cents)
	}
}

func TestRecommendation(t *testing.T) {
	asOf := core.NewDate(2025, 2, 20)
	tests := []struct {
		name string
		txs  []core.Transaction
		want string
	}{
		{
			name: "no expenses last month",
			txs: []core.Transaction{
				tx("a", 1000, core.Expense, "Food", core.NewDate(2025, 2, 5)),
			},
			want: "Great job! It seems you didn't have any expenses last month. Keep recording your expenses!",
		},
		{
			name: "increase",
			txs: []core.Transaction{
				tx("a", 1000, core.Expense, "Food", core.NewDate(2025, 1, 5)),
				tx("b", 1500, core.Expense, "Food", core.NewDate(2025, 2, 5)),
			},
			want: "Your expenses have increased by 50.00% compared to last month. Consider reviewing your expenses.",
		},
		{
			name: "decrease",
			txs: []core.Transaction{
				tx("a", 2000, core.Expense, "Food", core.NewDate(2025, 1, 5)),
				tx("b", 1000, core.Expense, "Food", core.NewDate(2025, 2, 5)),
			},
			want: "Congratulations! Your expenses have decreased by 50.00% compared to last month. Keep it up!",
		},
		{
			name: "unchanged",
			txs: []core.Transaction{
				tx("a", 1000, core.Expense, "Food", core.NewDate(2025, 1, 5)),
				tx("b", 1000, core.Expense, "Food", core.NewDate(2025, 2, 5)),
			},
			want: "Your spending hasn't changed compared to last month. Keep an eye on your budget!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommendation(tt.txs, asOf); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
