package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitwiser/internal/ledger"
)

// Split is one user's share of an expense.
type Split struct {
	UserID string
	Amount decimal.Decimal
	// Paid is true once this share has been paid back.
	Paid bool
}

// Expense represents a payment by one user shared across splits.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	Description string

	// Amount is the total paid.
	Amount decimal.Decimal

	// PaidByUserID is the user who paid.
	PaidByUserID string

	// GroupID is empty for direct expenses between users.
	GroupID string

	// SplitType records how the splits were built (equal, exact, percentage).
	SplitType string

	Splits []Split

	// Date is the Unix timestamp of when the expense happened.
	Date int64

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Involves reports whether userID paid or holds a split of the expense.
func (e *Expense) Involves(userID string) bool {
	if e.PaidByUserID == userID {
		return true
	}
	for _, s := range e.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// ToLedger converts the expense to the balance engine's representation.
func (e *Expense) ToLedger() ledger.Expense {
	splits := make([]ledger.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = ledger.Split{Member: ledger.MemberID(s.UserID), Amount: s.Amount, Settled: s.Paid}
	}
	return ledger.Expense{
		ID:         e.ID,
		Payer:      ledger.MemberID(e.PaidByUserID),
		Splits:     splits,
		Amount:     e.Amount,
		GroupID:    e.GroupID,
		OccurredAt: time.Unix(e.Date, 0),
	}
}

// LedgerExpenses converts a list of expenses.
func LedgerExpenses(expenses []*Expense) []ledger.Expense {
	out := make([]ledger.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToLedger()
	}
	return out
}
