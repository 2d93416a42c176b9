package ledger

import "fmt"

// Accumulate folds expenses and settlements into per-member totals and a raw
// pairwise ledger.
//
// Every record is validated before anything is folded, so an error never
// comes with a partial result. Splits held by the payer and settled splits are
// skipped. Settlements reduce ledger[payer][receiver] and may drive it
// negative; an overpayment is kept as a flipped debt rather than clamped.
//
// The fold only adds and subtracts, so the order of expenses and settlements
// does not affect the result.
func Accumulate(members []MemberID, expenses []Expense, settlements []Settlement) (*Result, error) {
	members = uniqueMembers(members)

	warnings, err := checkRecords(memberSet(members), expenses, settlements)
	if err != nil {
		return nil, err
	}

	totals, ledger := fold(members, expenses, settlements)
	return &Result{Totals: totals, Ledger: ledger, Warnings: warnings}, nil
}

// checkRecords validates every record and collects the non-fatal warnings.
// With a nil known set membership is not checked.
func checkRecords(known map[MemberID]bool, expenses []Expense, settlements []Settlement) ([]Warning, error) {
	var warnings []Warning
	for i, e := range expenses {
		if err := validateExpense(known, i, e); err != nil {
			return nil, err
		}
		if mismatch, sum := SplitSumMismatch(e); mismatch {
			warnings = append(warnings, Warning{
				Kind:     WarningSplitSum,
				Record:   RecordExpense,
				RecordID: e.ID,
				Message:  fmt.Sprintf("splits sum to %s, expense amount is %s", sum, e.Amount),
			})
		}
	}
	for i, s := range settlements {
		if err := validateSettlement(known, i, s); err != nil {
			return nil, err
		}
		if s.Payer == s.Receiver {
			warnings = append(warnings, Warning{
				Kind:     WarningSelfSettlement,
				Record:   RecordSettlement,
				RecordID: s.ID,
				Message:  fmt.Sprintf("payer and receiver are both %q, ignored", s.Payer),
			})
		}
	}
	return warnings, nil
}

// fold applies already validated records to fresh totals and ledger.
func fold(members []MemberID, expenses []Expense, settlements []Settlement) (Totals, Ledger) {
	totals := newTotals(members)
	ledger := newLedger(members)

	for _, e := range expenses {
		for _, split := range e.Splits {
			if split.Member == e.Payer || split.Settled {
				continue
			}
			totals.add(e.Payer, split.Amount)
			totals.add(split.Member, split.Amount.Neg())
			ledger.add(split.Member, e.Payer, split.Amount)
		}
	}

	for _, s := range settlements {
		if s.Payer == s.Receiver {
			continue
		}
		totals.add(s.Payer, s.Amount)
		totals.add(s.Receiver, s.Amount.Neg())
		ledger.add(s.Payer, s.Receiver, s.Amount.Neg())
	}

	return totals, ledger
}
