package ledger

import "github.com/shopspring/decimal"

// DirectBetween keeps the direct (no group) records shared by me and other:
// expenses paid by one of them with a split held by the other, and
// settlements exchanged between the two.
func DirectBetween(me, other MemberID, expenses []Expense, settlements []Settlement) ([]Expense, []Settlement) {
	var exps []Expense
	for _, e := range expenses {
		if e.GroupID != "" {
			continue
		}
		switch e.Payer {
		case me:
			if hasSplit(e, other) {
				exps = append(exps, e)
			}
		case other:
			if hasSplit(e, me) {
				exps = append(exps, e)
			}
		}
	}

	var setts []Settlement
	for _, s := range settlements {
		if s.GroupID != "" {
			continue
		}
		if (s.Payer == me && s.Receiver == other) || (s.Payer == other && s.Receiver == me) {
			setts = append(setts, s)
		}
	}

	return exps, setts
}

// PairBalance runs the Accumulate fold over the direct records between me and
// other. A positive result means other owes me, negative means I owe other.
//
// Records are validated as given, so errors and warnings match the group
// fold. Splits held by anyone outside the pair are then dropped from each
// expense before folding; they are debts to the payer that do not involve the
// other party.
func PairBalance(me, other MemberID, expenses []Expense, settlements []Settlement) (decimal.Decimal, []Warning, error) {
	if me == other {
		return decimal.Zero, nil, ErrSamePair
	}

	exps, setts := DirectBetween(me, other, expenses, settlements)
	warnings, err := checkRecords(nil, exps, setts)
	if err != nil {
		return decimal.Zero, nil, err
	}

	narrowed := make([]Expense, 0, len(exps))
	for _, e := range exps {
		narrowed = append(narrowed, narrowToPair(e, me, other))
	}

	_, ledger := fold([]MemberID{me, other}, narrowed, setts)
	return ledger.Net(other, me), warnings, nil
}

func hasSplit(e Expense, m MemberID) bool {
	for _, split := range e.Splits {
		if split.Member == m {
			return true
		}
	}
	return false
}

// narrowToPair keeps the splits held by a or b.
func narrowToPair(e Expense, a, b MemberID) Expense {
	out := e
	out.Splits = make([]Split, 0, len(e.Splits))
	for _, split := range e.Splits {
		if split.Member == a || split.Member == b {
			out.Splits = append(out.Splits, split)
		}
	}
	return out
}
