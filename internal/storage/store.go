// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitwiser/internal/models"
)

// ErrNotFound is wrapped by every store lookup that matches no record.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger record storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to user. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// SearchUsers matches query against display names and emails.
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup persists a new group with its members.
	// The group.ID and CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds members, ignoring users already in the group.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error
}

// ExpenseStore persists expenses with their splits.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListDirectExpensesPaidBy returns the non-group expenses paid by userID.
	ListDirectExpensesPaidBy(ctx context.Context, userID string) ([]*models.Expense, error)
}

// SettlementStore persists settlements.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ListDirectSettlementsBetween returns non-group settlements exchanged
	// between the two users in either direction.
	ListDirectSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error)
}
