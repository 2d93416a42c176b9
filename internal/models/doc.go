// Package models defines the persisted domain records for Splitwiser.
//
// # Records
//
//   - User: registered account, the identity behind every ledger member
//   - Group: named set of members with roles
//   - Expense: a payment by one user shared across splits
//   - Settlement: a direct payment between two users
//
// Expenses and settlements without a GroupID are direct records between
// users. Monetary amounts use decimal.Decimal; timestamps are Unix seconds.
//
// Records convert to their ledger counterparts with ToLedger so the balance
// engine never depends on storage types.
package models
