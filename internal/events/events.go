// Package events publishes ledger changes for downstream consumers.
package events

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitwiser/internal/models"
)

// Event types.
const (
	TypeExpenseRecorded    = "expense.recorded"
	TypeExpenseDeleted     = "expense.deleted"
	TypeSettlementRecorded = "settlement.recorded"
)

// Publisher emits ledger events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, expense *models.Expense) error
	PublishExpenseDeleted(ctx context.Context, expense *models.Expense) error
	PublishSettlementRecorded(ctx context.Context, settlement *models.Settlement) error
	Close() error
}

// Event is the JSON payload written for every ledger change.
type Event struct {
	Type       string          `json:"type"`
	RecordID   string          `json:"record_id"`
	GroupID    string          `json:"group_id,omitempty"`
	Payer      string          `json:"payer"`
	Receiver   string          `json:"receiver,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Shares     []Share         `json:"shares,omitempty"`
	ActorID    string          `json:"actor_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Share is one member's portion of an expense event.
type Share struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid,omitempty"`
}

// Key partitions events so a group stays ordered, and so does every
// two-party direct exchange between the same users. A direct expense shared
// with several users is keyed by its payer.
func (e Event) Key() string {
	if e.GroupID != "" {
		return "group:" + e.GroupID
	}
	if e.Receiver != "" {
		return "direct:" + pairKey(e.Payer, e.Receiver)
	}
	if other, ok := e.soleCounterparty(); ok {
		return "direct:" + pairKey(e.Payer, other)
	}
	return "direct:" + e.Payer
}

// soleCounterparty returns the only share holder besides the payer.
func (e Event) soleCounterparty() (string, bool) {
	var other string
	for _, s := range e.Shares {
		if s.UserID == e.Payer || s.UserID == other {
			continue
		}
		if other != "" {
			return "", false
		}
		other = s.UserID
	}
	return other, other != ""
}

func expenseEvent(typ string, expense *models.Expense) Event {
	shares := make([]Share, len(expense.Splits))
	for i, s := range expense.Splits {
		shares[i] = Share{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return Event{
		Type:       typ,
		RecordID:   expense.ID,
		GroupID:    expense.GroupID,
		Payer:      expense.PaidByUserID,
		Amount:     expense.Amount,
		Shares:     shares,
		ActorID:    expense.CreatedBy,
		OccurredAt: time.Unix(expense.Date, 0).UTC(),
	}
}

func settlementEvent(settlement *models.Settlement) Event {
	return Event{
		Type:       TypeSettlementRecorded,
		RecordID:   settlement.ID,
		GroupID:    settlement.GroupID,
		Payer:      settlement.PaidByUserID,
		Receiver:   settlement.ReceivedByUserID,
		Amount:     settlement.Amount,
		ActorID:    settlement.CreatedBy,
		OccurredAt: time.Unix(settlement.Date, 0).UTC(),
	}
}

func pairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + ":" + pair[1]
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishExpenseRecorded(context.Context, *models.Expense) error       { return nil }
func (Nop) PublishExpenseDeleted(context.Context, *models.Expense) error        { return nil }
func (Nop) PublishSettlementRecorded(context.Context, *models.Settlement) error { return nil }
func (Nop) Close() error                                                        { return nil }
