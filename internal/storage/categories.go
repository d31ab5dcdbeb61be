package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financetracker/internal/core"
)

// CreateCategory inserts c for userID. A name already used by the same user yields ErrDuplicate.
func (q *Queries) CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	now := q.now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		userID, c.Name, c.Description, unixNano(now))
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, ErrDuplicate)
		}
		if isForeignKeyError(err) {
			return core.Category{}, fmt.Errorf("category owner %d: %w", userID, ErrNotFound)
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	c.ID = id
	c.UserID = userID
	c.CreatedAt = now
	return c, nil
}

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c       core.Category
		created int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &created); err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = fromUnixNano(created)
	return c, nil
}

// ListCategories returns the user's categories ordered by name.
func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, created_at FROM categories WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	c, err := scanCategory(q.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at FROM categories WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// DeleteCategory removes the category together with its transactions and budgets.
func (q *Queries) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return expectAffected(res, ErrNotFound)
}
