package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitTolerance is the largest difference allowed between an expense amount
// and the sum of its splits before a WarningSplitSum is raised.
var SplitTolerance = decimal.New(1, -2)

// ValidateExpense checks the fields of e that do not depend on membership.
// It returns an *IntegrityError for rejected records.
func ValidateExpense(e Expense) error {
	return validateExpense(nil, 0, e)
}

// ValidateSettlement checks the fields of s that do not depend on membership.
func ValidateSettlement(s Settlement) error {
	return validateSettlement(nil, 0, s)
}

// SplitSumMismatch reports whether the splits of e differ from its amount by
// more than SplitTolerance, and the sum that was found.
func SplitSumMismatch(e Expense) (bool, decimal.Decimal) {
	sum := decimal.Zero
	for _, split := range e.Splits {
		sum = sum.Add(split.Amount)
	}
	return sum.Sub(e.Amount).Abs().GreaterThan(SplitTolerance), sum
}

// validateExpense rejects malformed expenses. With a nil known set membership
// is not checked.
func validateExpense(known map[MemberID]bool, index int, e Expense) error {
	fail := func(member MemberID, err error) error {
		return &IntegrityError{Record: RecordExpense, RecordID: e.ID, Index: index, Member: member, Err: err}
	}

	if e.Payer == "" {
		return fail("", ErrMissingPayer)
	}
	if known != nil && !known[e.Payer] {
		return fail(e.Payer, ErrUnknownMember)
	}
	if e.Amount.IsNegative() {
		return fail("", fmt.Errorf("%w: expense amount %s is negative", ErrInvalidAmount, e.Amount))
	}
	for _, split := range e.Splits {
		if split.Member == "" {
			return fail("", fmt.Errorf("%w: split has no member", ErrMalformedSplit))
		}
		if known != nil && !known[split.Member] {
			return fail(split.Member, ErrUnknownMember)
		}
		if split.Amount.IsNegative() {
			return fail(split.Member, fmt.Errorf("%w: amount %s is negative", ErrMalformedSplit, split.Amount))
		}
	}
	return nil
}

func validateSettlement(known map[MemberID]bool, index int, s Settlement) error {
	fail := func(member MemberID, err error) error {
		return &IntegrityError{Record: RecordSettlement, RecordID: s.ID, Index: index, Member: member, Err: err}
	}

	if s.Payer == "" {
		return fail("", ErrMissingPayer)
	}
	if s.Receiver == "" {
		return fail("", ErrMissingReceiver)
	}
	if known != nil {
		if !known[s.Payer] {
			return fail(s.Payer, ErrUnknownMember)
		}
		if !known[s.Receiver] {
			return fail(s.Receiver, ErrUnknownMember)
		}
	}
	if !s.Amount.IsPositive() {
		return fail("", fmt.Errorf("%w: settlement amount %s must be positive", ErrInvalidAmount, s.Amount))
	}
	return nil
}

func memberSet(members []MemberID) map[MemberID]bool {
	set := make(map[MemberID]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return set
}

// uniqueMembers drops repeated ids, keeping first-seen order.
func uniqueMembers(members []MemberID) []MemberID {
	seen := make(map[MemberID]bool, len(members))
	out := make([]MemberID, 0, len(members))
	for _, m := range members {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
