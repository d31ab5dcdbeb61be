package services

import (
	"context"
	"log/slog"

	"financetracker/internal/amqp"
	"financetracker/internal/core"
	"financetracker/internal/storage"
)

const PageSize = 20

// TransactionQuery selects a page of the transaction list. Zero values mean
// no filter; Page is 1-based and clamped into range.
type TransactionQuery struct {
	Type       core.TransactionType
	CategoryID int64
	Page       int
}

func (q TransactionQuery) filter() storage.TransactionFilter {
	return storage.TransactionFilter{Type: q.Type, CategoryID: q.CategoryID}
}

// TransactionPage is one page of a user's transactions plus what the list
// view needs to render its filters.
type TransactionPage struct {
	Transactions []core.Transaction
	Categories   []core.Category
	Query        TransactionQuery
	Page         int
	NumPages     int
	Count        int
	HasNext      bool
	HasPrevious  bool
}

// TransactionService orchestrates ledger writes across SQLite, AMQP and the
// dashboard cache.
type TransactionService struct {
	repo      *storage.SQLiteRepository
	publisher EventPublisher
	dashboard DashboardInvalidator
}

func NewTransactionService(repo *storage.SQLiteRepository, publisher EventPublisher, dashboard DashboardInvalidator) *TransactionService {
	return &TransactionService{repo: repo, publisher: publisher, dashboard: dashboard}
}

func (s *TransactionService) Create(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	saved, err := s.repo.CreateTransaction(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, mapWriteError(err)
	}
	s.afterWrite(ctx, amqp.ActionCreated, saved)
	return saved, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) Update(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	saved, err := s.repo.UpdateTransaction(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, mapWriteError(err)
	}
	s.afterWrite(ctx, amqp.ActionUpdated, saved)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) (core.Transaction, error) {
	deleted, err := s.repo.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterWrite(ctx, amqp.ActionDeleted, deleted)
	return deleted, nil
}

// List returns one page of the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64, q TransactionQuery) (TransactionPage, error) {
	f := q.filter()
	count, err := s.repo.CountTransactions(ctx, userID, f)
	if err != nil {
		return TransactionPage{}, err
	}

	numPages := (count + PageSize - 1) / PageSize
	if numPages < 1 {
		numPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > numPages {
		page = numPages
	}

	f.Limit = PageSize
	f.Offset = (page - 1) * PageSize
	txs, err := s.repo.ListTransactions(ctx, userID, f)
	if err != nil {
		return TransactionPage{}, err
	}
	cats, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return TransactionPage{}, err
	}

	q.Page = page
	return TransactionPage{
		Transactions: txs,
		Categories:   cats,
		Query:        q,
		Page:         page,
		NumPages:     numPages,
		Count:        count,
		HasNext:      page < numPages,
		HasPrevious:  page > 1,
	}, nil
}

// Export returns every transaction matching q's filters, ignoring paging.
func (s *TransactionService) Export(ctx context.Context, userID int64, q TransactionQuery) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, q.filter())
}

func (s *TransactionService) afterWrite(ctx context.Context, action string, tx core.Transaction) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, tx.UserID)
	}
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping transaction event", "action", action, "id", tx.ID)
		return
	}
	// The write already succeeded; a lost event is logged, not returned.
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, tx)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action,
			"id", tx.ID,
			"error", err)
	}
}
