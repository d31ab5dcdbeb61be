// Package ledger mirrors users' transactions into an external ledger.
package ledger

import (
	"context"
	"errors"

	"financetracker/internal/amqp"
	"financetracker/internal/core"
)

// ErrRejected marks writes the ledger refused outright. Retrying them cannot succeed.
var ErrRejected = errors.New("ledger rejected the write")

// Entry is one ledger row, keyed by transaction id.
type Entry struct {
	TransactionID int64
	UserID        int64
	Date          string
	Type          string
	Category      string
	Description   string
	Amount        core.Money
}

// EntryFromEvent converts a transaction event into a ledger row.
func EntryFromEvent(e *amqp.TransactionEvent) Entry {
	return Entry{
		TransactionID: e.ID,
		UserID:        e.UserID,
		Date:          e.Date,
		Type:          e.Type,
		Category:      e.Category,
		Description:   e.Description,
		Amount:        core.Money{Cents: e.AmountCents},
	}
}

// Writer stores ledger rows. Upsert replaces an existing row for the same
// transaction; Delete of an unknown transaction is not an error.
type Writer interface {
	Upsert(ctx context.Context, e Entry) error
	Delete(ctx context.Context, transactionID int64) error
}
