// Package splits builds the per-member shares of an expense.
//
// Every constructor returns shares that add up to the expense amount exactly,
// so the ledger never sees a rounding mismatch for expenses created here.
package splits

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitwiser/internal/ledger"
)

// Mode selects how an expense amount is divided.
type Mode string

const (
	ModeEqual      Mode = "equal"
	ModeExact      Mode = "exact"
	ModePercentage Mode = "percentage"
)

var (
	ErrNoParticipants = errors.New("must have at least one participant")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrSumMismatch    = errors.New("split amounts must sum to the expense amount")
	ErrPercentSum     = errors.New("percentages must sum to 100")
	ErrUnknownMode    = errors.New("unknown split mode")
	ErrDuplicate      = errors.New("participant listed more than once")
)

var (
	cent    = decimal.New(1, -2)
	hundred = decimal.NewFromInt(100)
)

// Share is a participant with the value used by the split mode: an amount for
// ModeExact, a percentage for ModePercentage, ignored for ModeEqual.
type Share struct {
	Member ledger.MemberID
	Value  decimal.Decimal
}

// Build dispatches to the constructor for mode.
func Build(mode Mode, amount decimal.Decimal, shares []Share) ([]ledger.Split, error) {
	switch mode {
	case ModeEqual, "":
		members := make([]ledger.MemberID, len(shares))
		for i, s := range shares {
			members[i] = s.Member
		}
		return Equal(amount, members)
	case ModeExact:
		return Exact(amount, shares)
	case ModePercentage:
		return Percentage(amount, shares)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Equal divides amount evenly between participants, rounded down to cents.
// Leftover cents go to the first participants in order.
func Equal(amount decimal.Decimal, participants []ledger.MemberID) ([]ledger.Split, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if err := checkDuplicates(participants); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(len(participants)))
	share := amount.Div(n).RoundDown(2)

	result := make([]ledger.Split, len(participants))
	for i, p := range participants {
		result[i] = ledger.Split{Member: p, Amount: share}
	}
	distributeRemainder(result, amount)
	return result, nil
}

// Exact uses the given amounts as is. They must add up to amount within
// ledger.SplitTolerance.
func Exact(amount decimal.Decimal, shares []Share) ([]ledger.Split, error) {
	if len(shares) == 0 {
		return nil, ErrNoParticipants
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if err := checkDuplicates(members(shares)); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	result := make([]ledger.Split, len(shares))
	for i, s := range shares {
		if s.Value.IsNegative() {
			return nil, fmt.Errorf("%w: %s has %s", ErrNegativeAmount, s.Member, s.Value)
		}
		sum = sum.Add(s.Value)
		result[i] = ledger.Split{Member: s.Member, Amount: s.Value}
	}

	if sum.Sub(amount).Abs().GreaterThan(ledger.SplitTolerance) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrSumMismatch, sum, amount)
	}
	return result, nil
}

// Percentage splits amount by percentages that must add up to 100.
// Each share is rounded down to cents and leftover cents go to the first
// participants.
func Percentage(amount decimal.Decimal, shares []Share) ([]ledger.Split, error) {
	if len(shares) == 0 {
		return nil, ErrNoParticipants
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if err := checkDuplicates(members(shares)); err != nil {
		return nil, err
	}

	total := decimal.Zero
	result := make([]ledger.Split, len(shares))
	for i, s := range shares {
		if s.Value.IsNegative() {
			return nil, fmt.Errorf("%w: %s has %s%%", ErrNegativeAmount, s.Member, s.Value)
		}
		total = total.Add(s.Value)
		result[i] = ledger.Split{
			Member: s.Member,
			Amount: amount.Mul(s.Value).Div(hundred).RoundDown(2),
		}
	}

	if total.Sub(hundred).Abs().GreaterThan(ledger.SplitTolerance) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentSum, total)
	}
	distributeRemainder(result, amount)
	return result, nil
}

// distributeRemainder hands out whatever is left of amount one cent at a time,
// then puts any sub-cent residue on the first split.
func distributeRemainder(result []ledger.Split, amount decimal.Decimal) {
	if len(result) == 0 {
		return
	}
	assigned := decimal.Zero
	for _, s := range result {
		assigned = assigned.Add(s.Amount)
	}
	remainder := amount.Sub(assigned)

	for i := 0; remainder.GreaterThanOrEqual(cent); i = (i + 1) % len(result) {
		result[i].Amount = result[i].Amount.Add(cent)
		remainder = remainder.Sub(cent)
	}
	if !remainder.IsZero() {
		result[0].Amount = result[0].Amount.Add(remainder)
	}
}

func members(shares []Share) []ledger.MemberID {
	out := make([]ledger.MemberID, len(shares))
	for i, s := range shares {
		out[i] = s.Member
	}
	return out
}

func checkDuplicates(participants []ledger.MemberID) error {
	seen := make(map[ledger.MemberID]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return fmt.Errorf("%w: %s", ErrDuplicate, p)
		}
		seen[p] = true
	}
	return nil
}
