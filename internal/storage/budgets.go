package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financetracker/internal/core"
)

const budgetSelect = `SELECT b.id, b.user_id, b.category_id, c.name, b.limit_cents, b.period, b.created_at, b.updated_at
	FROM budgets b JOIN categories c ON c.id = b.category_id AND c.user_id = b.user_id`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var (
		b                core.Budget
		period           string
		created, updated int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Limit.Cents, &period, &created, &updated); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.BudgetPeriod(period)
	b.CreatedAt = fromUnixNano(created)
	b.UpdatedAt = fromUnixNano(updated)
	return b, nil
}

// CreateBudget stores b for userID. Returns ErrCategoryNotOwned for a foreign
// category and ErrDuplicate when (category, period) already has a budget.
func (q *Queries) CreateBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error) {
	now := unixNano(q.now())
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, limit_cents, period, created_at, updated_at)
		 SELECT c.user_id, c.id, ?, ?, ?, ?
		 FROM categories c WHERE c.id = ? AND c.user_id = ?`,
		b.Limit.Cents, string(b.Period), now, now, b.CategoryID, userID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.Budget{}, fmt.Errorf("budget %s for category %d: %w", b.Period, b.CategoryID, ErrDuplicate)
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	if err := expectAffected(res, ErrCategoryNotOwned); err != nil {
		return core.Budget{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return q.GetBudget(ctx, userID, id)
}

func (q *Queries) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	b, err := scanBudget(q.db.QueryRowContext(ctx, budgetSelect+` WHERE b.id = ? AND b.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

// ListBudgets returns the user's budgets ordered by category name. An empty
// period returns budgets of every period.
func (q *Queries) ListBudgets(ctx context.Context, userID int64, period core.BudgetPeriod) ([]core.Budget, error) {
	query := budgetSelect + ` WHERE b.user_id = ?`
	args := []any{userID}
	if period != "" {
		query += ` AND b.period = ?`
		args = append(args, string(period))
	}
	query += ` ORDER BY c.name, b.id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RecordBudgetAlert marks an alert for (budget, window start) as sent. It
// returns false when the alert had already been recorded.
func (q *Queries) RecordBudgetAlert(ctx context.Context, budgetID int64, windowStart core.Date, spent core.Money) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO budget_alerts (budget_id, window_start, spent_cents, created_at) VALUES (?, ?, ?, ?)`,
		budgetID, windowStart.String(), spent.Cents, unixNano(q.now()))
	if err != nil {
		return false, fmt.Errorf("record budget alert %d: %w", budgetID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ForgetBudgetAlert removes a recorded alert so it can be sent again.
func (q *Queries) ForgetBudgetAlert(ctx context.Context, budgetID int64, windowStart core.Date) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM budget_alerts WHERE budget_id = ? AND window_start = ?`,
		budgetID, windowStart.String())
	if err != nil {
		return fmt.Errorf("forget budget alert %d: %w", budgetID, err)
	}
	return nil
}
