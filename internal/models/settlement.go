package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitwiser/internal/ledger"
)

// Settlement represents a payment between users to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to, empty for direct settlements.
	GroupID string

	// PaidByUserID is the user who paid (debtor settling up).
	PaidByUserID string

	// ReceivedByUserID is the user who received payment (creditor being paid).
	ReceivedByUserID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Note is an optional description for the settlement.
	Note string

	// Date is the Unix timestamp of the payment.
	Date int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// ToLedger converts the settlement to the balance engine's representation.
func (s *Settlement) ToLedger() ledger.Settlement {
	return ledger.Settlement{
		ID:         s.ID,
		Payer:      ledger.MemberID(s.PaidByUserID),
		Receiver:   ledger.MemberID(s.ReceivedByUserID),
		Amount:     s.Amount,
		GroupID:    s.GroupID,
		OccurredAt: time.Unix(s.Date, 0),
	}
}

// LedgerSettlements converts a list of settlements.
func LedgerSettlements(settlements []*Settlement) []ledger.Settlement {
	out := make([]ledger.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = s.ToLedger()
	}
	return out
}
