package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BreakdownLimit is the number of categories reported by CategoryBreakdown.
const BreakdownLimit = 5

var hundred = decimal.NewFromInt(100)

// Summary holds the income/expense totals of one month.
type Summary struct {
	Year           int
	Month          time.Month
	TotalIncome    Money
	TotalExpenses  Money
	CurrentBalance Money
}

// Utilization describes how much of a budget has been spent in a window.
type Utilization struct {
	Budget       Budget
	Window       DateRange
	Spent        Money
	Remaining    Money
	Percentage   decimal.Decimal
	IsOverBudget bool
}

// CategoryTotal is one row of the expense breakdown.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	Total        Money
}

// MonthlySummary totals the transactions dated in the given month.
// Transactions outside the month are ignored.
func MonthlySummary(txs []Transaction, year int, month time.Month) Summary {
	s := Summary{Year: year, Month: month}
	for _, tx := range txs {
		if !tx.Date.InMonth(year, month) {
			continue
		}
		switch tx.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(tx.Amount)
		}
	}
	s.CurrentBalance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// BudgetUtilization computes spending against b for expenses of b's category within window.
//
// Percentage is capped at 100 and kept at full precision; Remaining and
// IsOverBudget keep the uncapped signal.
func BudgetUtilization(b Budget, txs []Transaction, window DateRange) Utilization {
	var spent Money
	for _, tx := range txs {
		if tx.Type != Expense || tx.CategoryID != b.CategoryID || !window.Contains(tx.Date) {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	return Utilization{
		Budget:       b,
		Window:       window,
		Spent:        spent,
		Remaining:    b.Limit.Sub(spent),
		Percentage:   SpendingPercentage(spent, b.Limit),
		IsOverBudget: spent.Cents > b.Limit.Cents,
	}
}

// SpendingPercentage returns min(spent/limit*100, 100), or 0 when limit <= 0.
func SpendingPercentage(spent, limit Money) decimal.Decimal {
	if limit.Cents <= 0 {
		return decimal.Zero
	}
	pct := spent.Decimal().Mul(hundred).Div(limit.Decimal())
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// CategoryBreakdown returns the top expense categories of the month, largest first.
// Equal totals are ordered by category name, then id.
func CategoryBreakdown(txs []Transaction, year int, month time.Month) []CategoryTotal {
	byID := make(map[int64]*CategoryTotal)
	for _, tx := range txs {
		if tx.Type != Expense || !tx.Date.InMonth(year, month) {
			continue
		}
		ct, ok := byID[tx.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: tx.CategoryID, CategoryName: tx.CategoryName}
			byID[tx.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		if ct.Total.IsZero() {
			continue
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	if len(out) > BreakdownLimit {
		out = out[:BreakdownLimit]
	}
	return out
}
