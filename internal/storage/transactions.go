package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"financetracker/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID int64
	Range      *core.DateRange
	Limit      int
	Offset     int
}

const transactionSelect = `SELECT t.id, t.user_id, t.type, t.amount_cents, t.date, t.category_id, c.name,
	t.description, t.created_at, t.updated_at
	FROM transactions t JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id`

const transactionOrder = ` ORDER BY t.date DESC, t.created_at DESC, t.id DESC`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		tx               core.Transaction
		typ, date        string
		created, updated int64
	)
	err := row.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &date, &tx.CategoryID, &tx.CategoryName,
		&tx.Description, &created, &updated)
	if err != nil {
		return core.Transaction{}, err
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	tx.Type = core.TransactionType(typ)
	tx.Date = core.Date{Time: d}
	tx.CreatedAt = fromUnixNano(created)
	tx.UpdatedAt = fromUnixNano(updated)
	return tx, nil
}

// CreateTransaction stores tx for userID. The category must belong to the
// same user, otherwise ErrCategoryNotOwned is returned and nothing is written.
func (q *Queries) CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	now := unixNano(q.now())
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, date, category_id, description, created_at, updated_at)
		 SELECT c.user_id, ?, ?, ?, c.id, ?, ?, ?
		 FROM categories c WHERE c.id = ? AND c.user_id = ?`,
		string(tx.Type), tx.Amount.Cents, tx.Date.String(), tx.Description, now, now, tx.CategoryID, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if err := expectAffected(res, ErrCategoryNotOwned); err != nil {
		return core.Transaction{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", userID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return q.GetTransaction(ctx, userID, id)
}

func (q *Queries) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	tx, err := scanTransaction(q.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ? AND t.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// UpdateTransaction overwrites the editable fields of an existing transaction.
func (q *Queries) UpdateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	if _, err := q.GetTransaction(ctx, userID, tx.ID); err != nil {
		return core.Transaction{}, err
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, amount_cents = ?, date = ?, category_id = ?, description = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?
		   AND EXISTS (SELECT 1 FROM categories c WHERE c.id = ? AND c.user_id = ?)`,
		string(tx.Type), tx.Amount.Cents, tx.Date.String(), tx.CategoryID, tx.Description, unixNano(q.now()),
		tx.ID, userID, tx.CategoryID, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}
	if err := expectAffected(res, ErrCategoryNotOwned); err != nil {
		return core.Transaction{}, err
	}
	return q.GetTransaction(ctx, userID, tx.ID)
}

// DeleteTransaction removes the transaction and returns it as it was.
func (q *Queries) DeleteTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	tx, err := q.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if err := expectAffected(res, ErrNotFound); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (f TransactionFilter) where(userID int64) (string, []any) {
	clauses := []string{"t.user_id = ?"}
	args := []any{userID}
	if f.Type != "" {
		clauses = append(clauses, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID > 0 {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Range != nil {
		clauses = append(clauses, "t.date BETWEEN ? AND ?")
		args = append(args, f.Range.Start.String(), f.Range.End.String())
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListTransactions returns the user's transactions, newest first.
func (q *Queries) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	where, args := f.where(userID)
	query := transactionSelect + where + transactionOrder
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// CountTransactions counts the rows ListTransactions would return without paging.
func (q *Queries) CountTransactions(ctx context.Context, userID int64, f TransactionFilter) (int, error) {
	where, args := f.where(userID)
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// TransactionsInRange returns the user's transactions dated within r.
func (q *Queries) TransactionsInRange(ctx context.Context, userID int64, r core.DateRange) ([]core.Transaction, error) {
	return q.ListTransactions(ctx, userID, TransactionFilter{Range: &r})
}

// RecentTransactions returns the user's latest transactions regardless of date range.
func (q *Queries) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	return q.ListTransactions(ctx, userID, TransactionFilter{Limit: limit})
}
