package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitwiser/internal/ledger"
	"github.com/mmynk/splitwiser/internal/models"
)

// Wire messages. Amounts travel as decimal strings, timestamps as Unix seconds.

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type GroupMember struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type Group struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Members     []*GroupMember `json:"members"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   int64          `json:"createdAt"`
}

type Split struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid,omitempty"`
}

type Expense struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	PaidByUserID string          `json:"paidByUserId"`
	GroupID      string          `json:"groupId,omitempty"`
	SplitType    string          `json:"splitType"`
	Splits       []*Split        `json:"splits"`
	Date         int64           `json:"date"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    int64           `json:"createdAt"`
}

type Settlement struct {
	ID               string          `json:"id"`
	GroupID          string          `json:"groupId,omitempty"`
	PaidByUserID     string          `json:"paidByUserId"`
	ReceivedByUserID string          `json:"receivedByUserId"`
	Amount           decimal.Decimal `json:"amount"`
	Note             string          `json:"note,omitempty"`
	Date             int64           `json:"date"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        int64           `json:"createdAt"`
}

// Debt is a positive amount owed to or by UserID.
type Debt struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberBalance is one member's position in a group.
type MemberBalance struct {
	UserID string `json:"userId"`
	// TotalBalance is positive when the member is owed money overall.
	TotalBalance decimal.Decimal `json:"totalBalance"`
	Owes         []*Debt         `json:"owes"`
	OwedBy       []*Debt         `json:"owedBy"`
}

type LedgerWarning struct {
	Kind     string `json:"kind"`
	Record   string `json:"record"`
	RecordID string `json:"recordId"`
	Message  string `json:"message"`
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

type SearchUsersRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchUsersResponse struct {
	Users []*User `json:"users"`
}

// Groups

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// MemberIDs are added as regular members; the caller becomes admin.
	MemberIDs []string `json:"memberIds"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddGroupMembersRequest struct {
	GroupID string   `json:"groupId"`
	UserIDs []string `json:"userIds"`
}

type AddGroupMembersResponse struct {
	Group *Group `json:"group"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Group       *Group           `json:"group"`
	Members     []*User          `json:"members"`
	Expenses    []*Expense       `json:"expenses"`
	Settlements []*Settlement    `json:"settlements"`
	Balances    []*MemberBalance `json:"balances"`
	UserLookup  map[string]*User `json:"userLookupMap"`
	Warnings    []*LedgerWarning `json:"warnings,omitempty"`
}

// Expenses

// Share is a participant in a generated split. Value is an amount for exact
// splits, a percentage for percentage splits and ignored for equal splits.
type Share struct {
	UserID string          `json:"userId"`
	Value  decimal.Decimal `json:"value"`
}

type CreateExpenseRequest struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	PaidByUserID string          `json:"paidByUserId"`
	GroupID      string          `json:"groupId,omitempty"`
	// SplitType is equal, exact, percentage, or custom when Splits is set.
	SplitType string   `json:"splitType"`
	Shares    []*Share `json:"shares,omitempty"`
	// Splits are stored as given, without rebalancing.
	Splits []*Split `json:"splits,omitempty"`
	// Date defaults to now.
	Date int64 `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense  *Expense         `json:"expense"`
	Warnings []*LedgerWarning `json:"warnings,omitempty"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type CreateSettlementRequest struct {
	GroupID          string          `json:"groupId,omitempty"`
	PaidByUserID     string          `json:"paidByUserId"`
	ReceivedByUserID string          `json:"receivedByUserId"`
	Amount           decimal.Decimal `json:"amount"`
	Note             string          `json:"note,omitempty"`
	Date             int64           `json:"date,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type GetExpensesBetweenUsersRequest struct {
	OtherUserID string `json:"otherUserId"`
}

type GetExpensesBetweenUsersResponse struct {
	OtherUser   *User         `json:"otherUser"`
	Expenses    []*Expense    `json:"expenses"`
	Settlements []*Settlement `json:"settlements"`
	// Balance is positive when the other user owes the caller.
	Balance  decimal.Decimal  `json:"balance"`
	Warnings []*LedgerWarning `json:"warnings,omitempty"`
}

func toUser(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		ImageURL:    u.ImageURL,
		CreatedAt:   u.CreatedAt,
	}
}

func toGroup(g *models.Group) *Group {
	members := make([]*GroupMember, len(g.Members))
	for i, m := range g.Members {
		members[i] = &GroupMember{UserID: m.UserID, Role: m.Role}
	}
	return &Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     members,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

func toExpense(e *models.Expense) *Expense {
	splits := make([]*Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = &Split{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return &Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidByUserID: e.PaidByUserID,
		GroupID:      e.GroupID,
		SplitType:    e.SplitType,
		Splits:       splits,
		Date:         e.Date,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}

func toExpenses(expenses []*models.Expense) []*Expense {
	out := make([]*Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toExpense(e)
	}
	return out
}

func toSettlement(s *models.Settlement) *Settlement {
	return &Settlement{
		ID:               s.ID,
		GroupID:          s.GroupID,
		PaidByUserID:     s.PaidByUserID,
		ReceivedByUserID: s.ReceivedByUserID,
		Amount:           s.Amount,
		Note:             s.Note,
		Date:             s.Date,
		CreatedBy:        s.CreatedBy,
		CreatedAt:        s.CreatedAt,
	}
}

func toSettlements(settlements []*models.Settlement) []*Settlement {
	out := make([]*Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toSettlement(s)
	}
	return out
}

func toBalances(views []ledger.BalanceView) []*MemberBalance {
	out := make([]*MemberBalance, len(views))
	for i, v := range views {
		out[i] = &MemberBalance{
			UserID:       string(v.Member),
			TotalBalance: v.TotalBalance,
			Owes:         toDebts(v.Owes),
			OwedBy:       toDebts(v.OwedBy),
		}
	}
	return out
}

func toDebts(debts []ledger.Debt) []*Debt {
	out := make([]*Debt, len(debts))
	for i, d := range debts {
		out[i] = &Debt{UserID: string(d.Counterparty), Amount: d.Amount}
	}
	return out
}

func toWarnings(warnings []ledger.Warning) []*LedgerWarning {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]*LedgerWarning, len(warnings))
	for i, w := range warnings {
		out[i] = &LedgerWarning{
			Kind:     string(w.Kind),
			Record:   string(w.Record),
			RecordID: w.RecordID,
			Message:  w.Message,
		}
	}
	return out
}
