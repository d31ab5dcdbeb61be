package services

import (
	"context"
	"errors"

	"financetracker/internal/amqp"
	"financetracker/internal/core"
	"financetracker/internal/storage"
)

// EventPublisher is satisfied by *amqp.Client. A nil publisher disables events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
	PublishBudgetAlert(ctx context.Context, alert *amqp.BudgetAlert) error
}

// DashboardInvalidator drops cached dashboards after a user's data changes.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, userID int64)
}

func categoryNotAvailable() error {
	return &core.ValidationError{
		Field:   "category",
		Message: "Select a valid choice. That choice is not one of the available choices.",
		Err:     core.ErrMissingCategory,
	}
}

// mapWriteError turns storage ownership failures into validation errors.
func mapWriteError(err error) error {
	if errors.Is(err, storage.ErrCategoryNotOwned) {
		return categoryNotAvailable()
	}
	return err
}
