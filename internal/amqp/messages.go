package amqp

import (
	"encoding/json"
	"time"

	"financetracker/internal/core"
)

// Routing keys on the finance exchange.
const (
	RoutingKeyTransaction    = "transaction"
	RoutingKeyBudgetExceeded = "budget.exceeded"
)

// Transaction event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent describes a write to a user's ledger. It carries the full
// row so consumers never read the API database.
type TransactionEvent struct {
	Action      string    `json:"action"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionEvent(action string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:      action,
		ID:          tx.ID,
		UserID:      tx.UserID,
		Type:        string(tx.Type),
		AmountCents: tx.Amount.Cents,
		Date:        tx.Date.String(),
		Category:    tx.CategoryName,
		Description: tx.Description,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlert is published once per budget and period window when spending
// goes over the limit.
type BudgetAlert struct {
	BudgetID    int64     `json:"budget_id"`
	UserID      int64     `json:"user_id"`
	Category    string    `json:"category"`
	Period      string    `json:"period"`
	LimitCents  int64     `json:"limit_cents"`
	SpentCents  int64     `json:"spent_cents"`
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewBudgetAlert(u core.Utilization) *BudgetAlert {
	return &BudgetAlert{
		BudgetID:    u.Budget.ID,
		UserID:      u.Budget.UserID,
		Category:    u.Budget.CategoryName,
		Period:      string(u.Budget.Period),
		LimitCents:  u.Budget.Limit.Cents,
		SpentCents:  u.Spent.Cents,
		WindowStart: u.Window.Start.String(),
		WindowEnd:   u.Window.End.String(),
		Timestamp:   time.Now().UTC(),
	}
}

func (m *BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertFromJSON(data []byte) (*BudgetAlert, error) {
	var msg BudgetAlert
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
