package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"financetracker/internal/core"
)

// CreateUser inserts a user. A taken username yields ErrDuplicate.
func (q *Queries) CreateUser(ctx context.Context, u core.User, passwordHash string) (core.User, error) {
	now := q.now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (username, first_name, last_name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.FirstName, u.LastName, u.Email, passwordHash, unixNano(now))
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, ErrDuplicate)
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now

	slog.InfoContext(ctx, "User saved to SQLite", "user_id", id, "username", u.Username)
	return u, nil
}

const userColumns = `id, username, first_name, last_name, email, created_at`

func scanUser(row interface{ Scan(...any) error }, extra ...any) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	dest := append([]any{&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = fromUnixNano(created)
	return u, nil
}

// GetUserCredentials returns the user and stored password hash for username.
func (q *Queries) GetUserCredentials(ctx context.Context, username string) (core.User, string, error) {
	var hash string
	u, err := scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE username = ?`, username), &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", ErrNotFound
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user %q: %w", username, err)
	}
	return u, hash, nil
}

// ListUserIDs returns the ids of every user, ascending.
func (q *Queries) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteUser removes a user and, through cascading keys, everything they own.
func (q *Queries) DeleteUser(ctx context.Context, userID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	return expectAffected(res, ErrNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
