// Package ledger reconciles expenses and settlements into balances.
//
// The package is a pure transform: callers pass the member list of a group
// (or a pair of users) together with the expense and settlement records that
// touch that scope, and receive net totals per member plus a pairwise ledger of
// who owes whom. Nothing is persisted and no state is shared between calls.
//
// # Sign conventions
//
// Totals are signed per member: positive means the member is owed money,
// negative means the member owes money. The raw Ledger is keyed
// [debtor][creditor]. Settlements subtract from the payer's debtor cell and
// are allowed to drive it negative, which means the debt direction flipped.
// Project and Ledger.Canonical are the read paths that turn those signed
// cells into strictly positive, correctly directed debts.
//
// # Input integrity
//
// References to members outside the supplied member list reject the whole
// computation with an *IntegrityError. Split sums that do not match their
// expense total are reported as warnings and the literal split amounts are
// used. Settlements from a member to themselves are skipped.
package ledger
