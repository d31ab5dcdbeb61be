package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tx(typ TransactionType, cents int64, d Date, catID int64, catName string) Transaction {
	return Transaction{Type: typ, Amount: Money{Cents: cents}, Date: d, CategoryID: catID, CategoryName: catName}
}

func TestMonthlySummary(t *testing.T) {
	jan := func(day int) Date { return NewDate(2024, time.January, day) }

	tests := []struct {
		name                      string
		txs                       []Transaction
		income, expenses, balance int64
	}{
		{
			name: "empty",
		},
		{
			name: "income and expenses",
			txs: []Transaction{
				tx(Income, 300000, jan(1), 1, "Salary"),
				tx(Expense, 20000, jan(5), 2, "Groceries"),
				tx(Expense, 120000, jan(20), 3, "Utilities"),
			},
			income: 300000, expenses: 140000, balance: 160000,
		},
		{
			name: "other months excluded",
			txs: []Transaction{
				tx(Income, 300000, jan(31), 1, "Salary"),
				tx(Income, 300000, NewDate(2024, time.February, 1), 1, "Salary"),
				tx(Expense, 5000, NewDate(2023, time.January, 15), 2, "Groceries"),
			},
			income: 300000, expenses: 0, balance: 300000,
		},
		{
			name: "negative balance",
			txs: []Transaction{
				tx(Income, 1, jan(1), 1, "Salary"),
				tx(Expense, 10, jan(2), 2, "Groceries"),
			},
			income: 1, expenses: 10, balance: -9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MonthlySummary(tt.txs, 2024, time.January)
			if s.TotalIncome.Cents != tt.income {
				t.Errorf("income = %s, want %d cents", s.TotalIncome, tt.income)
			}
			if s.TotalExpenses.Cents != tt.expenses {
				t.Errorf("expenses = %s, want %d cents", s.TotalExpenses, tt.expenses)
			}
			if s.CurrentBalance.Cents != tt.balance {
				t.Errorf("balance = %s, want %d cents", s.CurrentBalance, tt.balance)
			}
			if s.TotalIncome.Sub(s.TotalExpenses) != s.CurrentBalance {
				t.Errorf("balance does not equal income - expenses")
			}
		})
	}
}

func TestBudgetUtilization(t *testing.T) {
	window := MonthRange(2024, time.March)
	groceries := Budget{ID: 1, CategoryID: 2, CategoryName: "Groceries", Limit: Money{Cents: 50000}, Period: Monthly}
	in := func(day int) Date { return NewDate(2024, time.March, day) }

	tests := []struct {
		name      string
		budget    Budget
		txs       []Transaction
		spent     int64
		remaining int64
		pct       decimal.Decimal
		over      bool
	}{
		{
			name:      "no spending",
			budget:    groceries,
			remaining: 50000,
			pct:       decimal.Zero,
		},
		{
			name:   "half spent",
			budget: groceries,
			txs: []Transaction{
				tx(Expense, 15000, in(3), 2, "Groceries"),
				tx(Expense, 10000, in(9), 2, "Groceries"),
			},
			spent: 25000, remaining: 25000, pct: decimal.NewFromInt(50),
		},
		{
			name:   "over budget caps percentage",
			budget: groceries,
			txs: []Transaction{
				tx(Expense, 40000, in(3), 2, "Groceries"),
				tx(Expense, 20000, in(31), 2, "Groceries"),
			},
			spent: 60000, remaining: -10000, pct: decimal.NewFromInt(100), over: true,
		},
		{
			name:   "exactly at limit is not over",
			budget: groceries,
			txs:    []Transaction{tx(Expense, 50000, in(1), 2, "Groceries")},
			spent:  50000, remaining: 0, pct: decimal.NewFromInt(100),
		},
		{
			name:   "ignores income, other categories and other months",
			budget: groceries,
			txs: []Transaction{
				tx(Income, 99999, in(3), 2, "Groceries"),
				tx(Expense, 99999, in(3), 3, "Utilities"),
				tx(Expense, 99999, NewDate(2024, time.April, 1), 2, "Groceries"),
				tx(Expense, 99999, NewDate(2024, time.February, 29), 2, "Groceries"),
				tx(Expense, 10000, in(15), 2, "Groceries"),
			},
			spent: 10000, remaining: 40000, pct: decimal.NewFromInt(20),
		},
		{
			name:   "fractional percentage keeps precision",
			budget: Budget{CategoryID: 2, Limit: Money{Cents: 30000}},
			txs:    []Transaction{tx(Expense, 10000, in(2), 2, "Groceries")},
			spent:  10000, remaining: 20000, pct: decimal.NewFromInt(100).Div(decimal.NewFromInt(3)),
		},
		{
			name:   "one cent under a large limit stays below 100",
			budget: Budget{CategoryID: 2, Limit: Money{Cents: 1000000}},
			txs:    []Transaction{tx(Expense, 999999, in(2), 2, "Groceries")},
			spent:  999999, remaining: 1, pct: decimal.RequireFromString("99.9999"),
		},
		{
			name:   "one cent against a large limit is not zero",
			budget: Budget{CategoryID: 2, Limit: Money{Cents: 100000}},
			txs:    []Transaction{tx(Expense, 1, in(2), 2, "Groceries")},
			spent:  1, remaining: 99999, pct: decimal.RequireFromString("0.001"),
		},
		{
			name:   "non-positive limit yields zero percent",
			budget: Budget{CategoryID: 2, Limit: Money{Cents: 0}},
			txs:    []Transaction{tx(Expense, 10000, in(2), 2, "Groceries")},
			spent:  10000, remaining: -10000, pct: decimal.Zero, over: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := BudgetUtilization(tt.budget, tt.txs, window)
			if u.Spent.Cents != tt.spent {
				t.Errorf("spent = %s, want %d cents", u.Spent, tt.spent)
			}
			if u.Remaining.Cents != tt.remaining {
				t.Errorf("remaining = %s, want %d cents", u.Remaining, tt.remaining)
			}
			if !u.Percentage.Equal(tt.pct) {
				t.Errorf("percentage = %s, want %s", u.Percentage, tt.pct)
			}
			if u.IsOverBudget != tt.over {
				t.Errorf("isOverBudget = %v, want %v", u.IsOverBudget, tt.over)
			}

			again := BudgetUtilization(tt.budget, tt.txs, window)
			if again.Spent != u.Spent || !again.Percentage.Equal(u.Percentage) {
				t.Errorf("recomputation differs")
			}
		})
	}
}

func TestCategoryBreakdown(t *testing.T) {
	d := NewDate(2024, time.May, 10)
	txs := []Transaction{
		tx(Expense, 1000, d, 1, "Groceries"),
		tx(Expense, 500, d, 1, "Groceries"),
		tx(Expense, 3000, d, 2, "Rent"),
		tx(Expense, 1500, d, 3, "Utilities"),
		tx(Expense, 1500, d, 4, "Entertainment"),
		tx(Expense, 200, d, 5, "Transportation"),
		tx(Expense, 100, d, 6, "Books"),
		tx(Income, 90000, d, 7, "Salary"),
		tx(Expense, 90000, NewDate(2024, time.June, 1), 8, "Travel"),
	}

	got := CategoryBreakdown(txs, 2024, time.May)
	want := []struct {
		name  string
		cents int64
	}{
		{"Rent", 3000},
		{"Entertainment", 1500},
		{"Groceries", 1500},
		{"Utilities", 1500},
		{"Transportation", 200},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].CategoryName != w.name || got[i].Total.Cents != w.cents {
			t.Errorf("row %d = %s %s, want %s %d", i, got[i].CategoryName, got[i].Total, w.name, w.cents)
		}
	}

	if rows := CategoryBreakdown(nil, 2024, time.May); len(rows) != 0 {
		t.Errorf("empty input gave %d rows", len(rows))
	}
}
