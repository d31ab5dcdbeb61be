package http

import (
	"encoding/json"
	"time"

	"financetracker/internal/core"
	"financetracker/internal/services"
)

type userView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type sessionView struct {
	User      userView  `json:"user"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type categoryView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type transactionView struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Amount      core.Money `json:"amount"`
	Date        core.Date  `json:"date"`
	CategoryID  int64      `json:"category_id"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type budgetView struct {
	ID           int64       `json:"id"`
	CategoryID   int64       `json:"category_id"`
	Category     string      `json:"category"`
	Limit        core.Money  `json:"limit"`
	Period       string      `json:"period"`
	Spent        *core.Money `json:"spent,omitempty"`
	Remaining    *core.Money `json:"remaining,omitempty"`
	Percentage   json.Number `json:"percentage,omitempty"`
	IsOverBudget *bool       `json:"is_over_budget,omitempty"`
	WindowStart  *core.Date  `json:"window_start,omitempty"`
	WindowEnd    *core.Date  `json:"window_end,omitempty"`
}

type categoryTotalView struct {
	CategoryID int64      `json:"category_id"`
	Category   string     `json:"category"`
	Total      core.Money `json:"total"`
}

type dashboardView struct {
	CurrentMonth       string              `json:"current_month"`
	Year               int                 `json:"year"`
	Month              int                 `json:"month"`
	TotalIncome        core.Money          `json:"total_income"`
	TotalExpenses      core.Money          `json:"total_expenses"`
	CurrentBalance     core.Money          `json:"current_balance"`
	RecentTransactions []transactionView   `json:"recent_transactions"`
	BudgetData         []budgetView        `json:"budget_data"`
	ExpenseBreakdown   []categoryTotalView `json:"expense_breakdown"`
}

type transactionFiltersView struct {
	Type     string `json:"type"`
	Category *int64 `json:"category"`
}

type transactionPageView struct {
	Transactions []transactionView      `json:"transactions"`
	Categories   []categoryView         `json:"categories"`
	Filters      transactionFiltersView `json:"filters"`
	Page         int                    `json:"page"`
	NumPages     int                    `json:"num_pages"`
	Count        int                    `json:"count"`
	HasNext      bool                   `json:"has_next"`
	HasPrevious  bool                   `json:"has_previous"`
}

func newUserView(u core.User) userView {
	return userView{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func newSessionView(s services.Session) sessionView {
	return sessionView{User: newUserView(s.User), Token: s.Token, TokenType: "Bearer", ExpiresAt: s.ExpiresAt}
}

func newCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

func newCategoryViews(cs []core.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCategoryView(c))
	}
	return out
}

func newTransactionView(tx core.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Date:        tx.Date,
		CategoryID:  tx.CategoryID,
		Category:    tx.CategoryName,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionView(tx))
	}
	return out
}

func newBudgetView(b core.Budget) budgetView {
	return budgetView{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Category:   b.CategoryName,
		Limit:      b.Limit,
		Period:     string(b.Period),
	}
}

// newUtilizationView renders the percentage as a bare JSON number such as 50
// or 33.33. Display values are truncated to two places so a budget that is
// not over never shows 100.
func newUtilizationView(u core.Utilization) budgetView {
	v := newBudgetView(u.Budget)
	spent, remaining, over := u.Spent, u.Remaining, u.IsOverBudget
	start, end := u.Window.Start, u.Window.End
	v.Spent = &spent
	v.Remaining = &remaining
	v.Percentage = json.Number(u.Percentage.Truncate(2).String())
	v.IsOverBudget = &over
	v.WindowStart = &start
	v.WindowEnd = &end
	return v
}

func newUtilizationViews(us []core.Utilization) []budgetView {
	out := make([]budgetView, 0, len(us))
	for _, u := range us {
		out = append(out, newUtilizationView(u))
	}
	return out
}

func newDashboardView(d services.Dashboard) dashboardView {
	breakdown := make([]categoryTotalView, 0, len(d.ExpenseBreakdown))
	for _, ct := range d.ExpenseBreakdown {
		breakdown = append(breakdown, categoryTotalView{CategoryID: ct.CategoryID, Category: ct.CategoryName, Total: ct.Total})
	}
	return dashboardView{
		CurrentMonth:       d.CurrentMonth(),
		Year:               d.Year,
		Month:              int(d.Month),
		TotalIncome:        d.Summary.TotalIncome,
		TotalExpenses:      d.Summary.TotalExpenses,
		CurrentBalance:     d.Summary.CurrentBalance,
		RecentTransactions: newTransactionViews(d.RecentTransactions),
		BudgetData:         newUtilizationViews(d.Budgets),
		ExpenseBreakdown:   breakdown,
	}
}

func newTransactionPageView(p services.TransactionPage) transactionPageView {
	filters := transactionFiltersView{Type: string(p.Query.Type)}
	if p.Query.CategoryID > 0 {
		id := p.Query.CategoryID
		filters.Category = &id
	}
	return transactionPageView{
		Transactions: newTransactionViews(p.Transactions),
		Categories:   newCategoryViews(p.Categories),
		Filters:      filters,
		Page:         p.Page,
		NumPages:     p.NumPages,
		Count:        p.Count,
		HasNext:      p.HasNext,
		HasPrevious:  p.HasPrevious,
	}
}
