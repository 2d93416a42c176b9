package ledger

import "github.com/shopspring/decimal"

// Ledger holds pairwise amounts keyed [debtor][creditor].
//
// Cells written by Accumulate are signed: a negative ledger[A][B] is the same
// debt as a positive ledger[B][A]. Use Net or Canonical to read directed debts.
type Ledger map[MemberID]map[MemberID]decimal.Decimal

// newLedger creates a zeroed cell for every ordered pair of distinct members.
func newLedger(members []MemberID) Ledger {
	l := make(Ledger, len(members))
	for _, a := range members {
		row := make(map[MemberID]decimal.Decimal, len(members))
		for _, b := range members {
			if a != b {
				row[b] = decimal.Zero
			}
		}
		l[a] = row
	}
	return l
}

// Owed returns the raw, possibly negative, cell for debtor -> creditor.
func (l Ledger) Owed(debtor, creditor MemberID) decimal.Decimal {
	if row, ok := l[debtor]; ok {
		if v, ok := row[creditor]; ok {
			return v
		}
	}
	return decimal.Zero
}

// Net returns how much a owes b once both directions are offset.
// A negative result means b owes a.
func (l Ledger) Net(a, b MemberID) decimal.Decimal {
	if a == b {
		return decimal.Zero
	}
	return l.Owed(a, b).Sub(l.Owed(b, a))
}

// Canonical returns a new ledger in which every pair carries its net debt in
// at most one direction and no cell is negative. l is not modified.
func (l Ledger) Canonical() Ledger {
	members := l.members()
	out := newLedger(members)
	for _, a := range members {
		for _, b := range members {
			if a == b {
				continue
			}
			if net := l.Net(a, b); net.IsPositive() {
				out[a][b] = net
			}
		}
	}
	return out
}

func (l Ledger) add(debtor, creditor MemberID, amount decimal.Decimal) {
	row, ok := l[debtor]
	if !ok {
		row = make(map[MemberID]decimal.Decimal)
		l[debtor] = row
	}
	row[creditor] = l.Owed(debtor, creditor).Add(amount)
}

// members collects every id that appears as a debtor or creditor.
func (l Ledger) members() []MemberID {
	seen := make(map[MemberID]bool)
	var out []MemberID
	visit := func(m MemberID) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for a, row := range l {
		visit(a)
		for b := range row {
			visit(b)
		}
	}
	return out
}
