package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberID identifies a person taking part in expenses and settlements.
type MemberID string

// Split is one member's share of an expense.
type Split struct {
	Member MemberID
	Amount decimal.Decimal
	// Settled marks a share that was already paid back outside of settlements.
	Settled bool
}

// Expense is a payment made by Payer and shared across Splits.
type Expense struct {
	ID      string
	Payer   MemberID
	Splits  []Split
	Amount  decimal.Decimal
	GroupID string // empty for direct (non-group) expenses

	OccurredAt time.Time
}

// Settlement is a direct payment from Payer to Receiver.
type Settlement struct {
	ID       string
	Payer    MemberID
	Receiver MemberID
	Amount   decimal.Decimal
	GroupID  string // empty for direct (non-group) settlements

	OccurredAt time.Time
}

// Totals maps each member to their signed net balance.
// Positive = is owed money, negative = owes money.
type Totals map[MemberID]decimal.Decimal

func newTotals(members []MemberID) Totals {
	totals := make(Totals, len(members))
	for _, m := range members {
		totals[m] = decimal.Zero
	}
	return totals
}

// Get returns the total for m, zero if m has no entry.
func (t Totals) Get(m MemberID) decimal.Decimal {
	if v, ok := t[m]; ok {
		return v
	}
	return decimal.Zero
}

// Sum adds every member's total. It is zero for any closed set of records.
func (t Totals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t {
		sum = sum.Add(v)
	}
	return sum
}

func (t Totals) add(m MemberID, amount decimal.Decimal) {
	t[m] = t.Get(m).Add(amount)
}

// Debt is one directed amount between a member and a counterparty.
type Debt struct {
	Counterparty MemberID
	Amount       decimal.Decimal
}

// BalanceView is the projected balance of a single member.
type BalanceView struct {
	Member       MemberID
	TotalBalance decimal.Decimal
	// Owes lists counterparties this member owes money to.
	Owes []Debt
	// OwedBy lists counterparties that owe this member money.
	OwedBy []Debt
}

// Result is the output of Accumulate.
type Result struct {
	Totals   Totals
	Ledger   Ledger
	Warnings []Warning
}
