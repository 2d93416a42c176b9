package models

import "github.com/mmynk/splitwiser/internal/ledger"

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member is a user's membership in a group.
type Member struct {
	UserID string
	Role   string
}

// Group represents a set of users sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Description is optional free text.
	Description string

	// Members lists every user in the group with their role.
	Members []Member

	// CreatedBy is the user ID that created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the member user IDs in membership order.
func (g *Group) MemberIDs() []ledger.MemberID {
	ids := make([]ledger.MemberID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = ledger.MemberID(m.UserID)
	}
	return ids
}
