package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financetracker/internal/core"
	"financetracker/internal/storage"
)

// BudgetService creates budgets and reports their utilization over the
// current window of each budget's own period.
type BudgetService struct {
	repo      *storage.SQLiteRepository
	dashboard DashboardInvalidator
	now       func() time.Time
}

func NewBudgetService(repo *storage.SQLiteRepository, dashboard DashboardInvalidator) *BudgetService {
	return &BudgetService{repo: repo, dashboard: dashboard, now: time.Now}
}

// List returns every budget of the user, ordered by category name.
func (s *BudgetService) List(ctx context.Context, userID int64) ([]core.Utilization, error) {
	budgets, err := s.repo.ListBudgets(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	today := core.DateOf(s.now())
	out := make([]core.Utilization, 0, len(budgets))
	for _, b := range budgets {
		u, err := utilizationInWindow(ctx, s.repo.Queries, b, today)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *BudgetService) Create(ctx context.Context, userID int64, b core.Budget) (core.Budget, error) {
	if b.Period == "" {
		b.Period = core.Monthly
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.repo.CreateBudget(ctx, userID, b)
	if errors.Is(err, storage.ErrDuplicate) {
		c, cerr := s.repo.GetCategory(ctx, userID, b.CategoryID)
		if cerr != nil {
			return core.Budget{}, fmt.Errorf("load category for duplicate budget: %w", cerr)
		}
		return core.Budget{}, core.DuplicateBudgetError(b.Period, c.Name)
	}
	if err != nil {
		return core.Budget{}, mapWriteError(err)
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, userID)
	}
	return saved, nil
}

// utilizationInWindow loads the budget category's expenses for the period
// window containing day and runs the calculator over them.
func utilizationInWindow(ctx context.Context, q *storage.Queries, b core.Budget, day core.Date) (core.Utilization, error) {
	window, err := core.PeriodWindow(b.Period, day)
	if err != nil {
		return core.Utilization{}, err
	}
	txs, err := q.ListTransactions(ctx, b.UserID, storage.TransactionFilter{
		Type:       core.Expense,
		CategoryID: b.CategoryID,
		Range:      &window,
	})
	if err != nil {
		return core.Utilization{}, fmt.Errorf("budget %d spending: %w", b.ID, err)
	}
	return core.BudgetUtilization(b, txs, window), nil
}
