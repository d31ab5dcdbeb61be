package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financetracker/internal/amqp"
	"financetracker/internal/core"
	"financetracker/internal/storage"
)

// MonitorResult summarizes one monitor pass.
type MonitorResult struct {
	Users      int
	Budgets    int
	OverBudget int
	Published  int
	Failed     int
}

// BudgetMonitor scans every budget and publishes one alert per budget and
// period window once spending exceeds the limit.
type BudgetMonitor struct {
	repo      *storage.SQLiteRepository
	publisher EventPublisher
	now       func() time.Time
}

func NewBudgetMonitor(repo *storage.SQLiteRepository, publisher EventPublisher) *BudgetMonitor {
	return &BudgetMonitor{repo: repo, publisher: publisher, now: time.Now}
}

// Run performs a single pass. A failure for one user is logged and the pass
// continues with the next.
func (m *BudgetMonitor) Run(ctx context.Context) (MonitorResult, error) {
	var res MonitorResult
	userIDs, err := m.repo.ListUserIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}
	today := core.DateOf(m.now())

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Users++
		if err := m.checkUser(ctx, userID, today, &res); err != nil {
			res.Failed++
			slog.ErrorContext(ctx, "Budget check failed", "user_id", userID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Budget monitor pass complete",
		"users", res.Users,
		"budgets", res.Budgets,
		"over_budget", res.OverBudget,
		"published", res.Published,
		"failed", res.Failed)
	return res, nil
}

func (m *BudgetMonitor) checkUser(ctx context.Context, userID int64, today core.Date, res *MonitorResult) error {
	budgets, err := m.repo.ListBudgets(ctx, userID, "")
	if err != nil {
		return err
	}
	for _, b := range budgets {
		res.Budgets++
		u, err := utilizationInWindow(ctx, m.repo.Queries, b, today)
		if err != nil {
			return err
		}
		if !u.IsOverBudget {
			continue
		}
		res.OverBudget++
		sent, err := m.alert(ctx, u)
		if err != nil {
			res.Failed++
			slog.ErrorContext(ctx, "Budget alert not delivered",
				"budget_id", b.ID,
				"user_id", userID,
				"error", err)
		}
		if sent {
			res.Published++
		}
	}
	return nil
}

// alert publishes u unless this budget window was already alerted.
func (m *BudgetMonitor) alert(ctx context.Context, u core.Utilization) (bool, error) {
	if m.publisher == nil {
		return false, nil
	}
	fresh, err := m.repo.RecordBudgetAlert(ctx, u.Budget.ID, u.Window.Start, u.Spent)
	if err != nil || !fresh {
		return false, err
	}
	if err := m.publisher.PublishBudgetAlert(ctx, amqp.NewBudgetAlert(u)); err != nil {
		// Forget the record so the next pass retries.
		if ferr := m.repo.ForgetBudgetAlert(ctx, u.Budget.ID, u.Window.Start); ferr != nil {
			slog.ErrorContext(ctx, "Failed to reset budget alert", "budget_id", u.Budget.ID, "error", ferr)
		}
		return false, err
	}
	slog.InfoContext(ctx, "Budget exceeded",
		"budget_id", u.Budget.ID,
		"user_id", u.Budget.UserID,
		"category", u.Budget.CategoryName,
		"period", u.Budget.Period,
		"spent_cents", u.Spent.Cents,
		"limit_cents", u.Budget.Limit.Cents)
	return true, nil
}
