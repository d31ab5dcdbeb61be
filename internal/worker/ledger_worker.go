package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financetracker/internal/amqp"
	"financetracker/internal/ledger"
)

// LedgerWorker applies transaction events to the external ledger.
type LedgerWorker struct {
	writer ledger.Writer
}

func NewLedgerWorker(writer ledger.Writer) *LedgerWorker {
	return &LedgerWorker{writer: writer}
}

// HandleTransactionEvent is an amqp.TransactionHandler. Unknown actions are
// logged and acknowledged so they do not loop on the queue.
func (w *LedgerWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"action", event.Action,
		"id", event.ID,
		"user_id", event.UserID)

	switch event.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		if err := w.writer.Upsert(ctx, ledger.EntryFromEvent(event)); err != nil {
			return deliveryError(fmt.Errorf("upsert ledger entry %d: %w", event.ID, err))
		}
	case amqp.ActionDeleted:
		if err := w.writer.Delete(ctx, event.ID); err != nil {
			return deliveryError(fmt.Errorf("delete ledger entry %d: %w", event.ID, err))
		}
	default:
		slog.WarnContext(ctx, "Ignoring transaction event with unknown action",
			"action", event.Action,
			"id", event.ID)
		return nil
	}

	slog.InfoContext(ctx, "Ledger updated",
		"action", event.Action,
		"id", event.ID,
		"amount_cents", event.AmountCents)
	return nil
}

// deliveryError tells the consumer to dead-letter writes the ledger rejected.
func deliveryError(err error) error {
	if errors.Is(err, ledger.ErrRejected) {
		return amqp.Permanent(err)
	}
	return err
}
