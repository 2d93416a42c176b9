package ledger

// Project builds one BalanceView per member, in member-list order.
//
// Each pair is read through Ledger.Net, so a debt shows up once as an Owes
// entry on the debtor and once as the mirrored OwedBy entry on the creditor,
// and never in both directions. A negative raw cell (an overpaid settlement)
// is presented as a positive debt in the opposite direction.
func Project(members []MemberID, totals Totals, ledger Ledger) []BalanceView {
	members = uniqueMembers(members)
	views := make([]BalanceView, 0, len(members))

	for _, m := range members {
		view := BalanceView{
			Member:       m,
			TotalBalance: totals.Get(m),
			Owes:         []Debt{},
			OwedBy:       []Debt{},
		}
		for _, other := range members {
			if other == m {
				continue
			}
			net := ledger.Net(m, other)
			switch net.Sign() {
			case 1:
				view.Owes = append(view.Owes, Debt{Counterparty: other, Amount: net})
			case -1:
				view.OwedBy = append(view.OwedBy, Debt{Counterparty: other, Amount: net.Neg()})
			}
		}
		views = append(views, view)
	}

	return views
}
