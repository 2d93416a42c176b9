package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("alice@example.com", "Alice", "hash")
	bob := models.NewUser("bob@example.com", "Bob", "hash")
	bob.ImageURL = "https://example.com/bob.png"
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash"))
		assert.Error(t, err)
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
		assert.Equal(t, bob.ImageURL, got.ImageURL)
	})

	t.Run("GetUserByID not found", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("GetUsersByIDs omits unknown ids", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{alice.ID, bob.ID, "ghost"})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "Alice", users[alice.ID].DisplayName)
	})

	t.Run("SearchUsers matches name and email", func(t *testing.T) {
		users, err := store.SearchUsers(ctx, "AL", 10)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)

		users, err = store.SearchUsers(ctx, "example.com", 10)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = store.SearchUsers(ctx, "%", 10)
		require.NoError(t, err)
		assert.Empty(t, users, "wildcards are matched literally")
	})
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{
		Name:      "Roommates",
		CreatedBy: "alice",
		Members: []models.Member{
			{UserID: "alice", Role: models.RoleAdmin},
			{UserID: "bob"},
		},
	}
	require.NoError(t, store.CreateGroup(ctx, group))
	assert.NotEmpty(t, group.ID)
	assert.NotZero(t, group.CreatedAt)

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roommates", got.Name)
	assert.Equal(t, []models.Member{
		{UserID: "alice", Role: models.RoleAdmin},
		{UserID: "bob", Role: models.RoleMember},
	}, got.Members)

	require.NoError(t, store.AddGroupMembers(ctx, group.ID, []models.Member{
		{UserID: "bob", Role: models.RoleAdmin},
		{UserID: "charlie"},
	}))
	got, err = store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 3)
	assert.Equal(t, models.RoleMember, got.Members[1].Role, "existing members keep their role")
	assert.Equal(t, "charlie", got.Members[2].UserID)

	groups, err := store.ListGroupsForUser(ctx, "charlie")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	_, err = store.GetGroup(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.AddGroupMembers(ctx, "nonexistent-id", nil), storage.ErrNotFound)
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []models.Member{{UserID: "alice"}, {UserID: "bob"}}}
	require.NoError(t, store.CreateGroup(ctx, group))

	groupExpense := &models.Expense{
		Description:  "Dinner",
		Amount:       d("60.30"),
		PaidByUserID: "alice",
		GroupID:      group.ID,
		SplitType:    "equal",
		Date:         100,
		CreatedBy:    "alice",
		Splits: []models.Split{
			{UserID: "alice", Amount: d("30.15")},
			{UserID: "bob", Amount: d("30.15"), Paid: true},
		},
	}
	require.NoError(t, store.CreateExpense(ctx, groupExpense))
	assert.NotEmpty(t, groupExpense.ID)

	direct := &models.Expense{
		Description:  "Taxi",
		Amount:       d("12"),
		PaidByUserID: "alice",
		SplitType:    "exact",
		Date:         200,
		CreatedBy:    "alice",
		Splits:       []models.Split{{UserID: "bob", Amount: d("12")}},
	}
	require.NoError(t, store.CreateExpense(ctx, direct))

	t.Run("GetExpense round-trips amounts and splits", func(t *testing.T) {
		got, err := store.GetExpense(ctx, groupExpense.ID)
		require.NoError(t, err)
		assert.True(t, d("60.30").Equal(got.Amount))
		assert.Equal(t, group.ID, got.GroupID)
		require.Len(t, got.Splits, 2)
		assert.Equal(t, "alice", got.Splits[0].UserID)
		assert.False(t, got.Splits[0].Paid)
		assert.True(t, got.Splits[1].Paid)
		assert.True(t, d("30.15").Equal(got.Splits[1].Amount))
	})

	t.Run("ListExpensesByGroup", func(t *testing.T) {
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Len(t, expenses[0].Splits, 2)
	})

	t.Run("ListDirectExpensesPaidBy excludes group expenses", func(t *testing.T) {
		expenses, err := store.ListDirectExpensesPaidBy(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, direct.ID, expenses[0].ID)
		assert.Empty(t, expenses[0].GroupID)

		expenses, err = store.ListDirectExpensesPaidBy(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		require.NoError(t, store.DeleteExpense(ctx, direct.ID))
		_, err := store.GetExpense(ctx, direct.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, direct.ID), storage.ErrNotFound)
	})
}

func TestSQLiteStore_Settlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []models.Member{{UserID: "alice"}, {UserID: "bob"}}}
	require.NoError(t, store.CreateGroup(ctx, group))

	inGroup := &models.Settlement{GroupID: group.ID, PaidByUserID: "bob", ReceivedByUserID: "alice", Amount: d("10"), CreatedBy: "bob"}
	toAlice := &models.Settlement{PaidByUserID: "bob", ReceivedByUserID: "alice", Amount: d("5.5"), Note: "cash", Date: 10, CreatedBy: "bob"}
	toBob := &models.Settlement{PaidByUserID: "alice", ReceivedByUserID: "bob", Amount: d("1"), Date: 20, CreatedBy: "alice"}
	other := &models.Settlement{PaidByUserID: "alice", ReceivedByUserID: "charlie", Amount: d("3"), CreatedBy: "alice"}
	for _, s := range []*models.Settlement{inGroup, toAlice, toBob, other} {
		require.NoError(t, store.CreateSettlement(ctx, s))
	}

	got, err := store.GetSettlement(ctx, toAlice.ID)
	require.NoError(t, err)
	assert.Equal(t, "cash", got.Note)
	assert.True(t, d("5.5").Equal(got.Amount))
	assert.Empty(t, got.GroupID)

	byGroup, err := store.ListSettlementsByGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, inGroup.ID, byGroup[0].ID)

	direct, err := store.ListDirectSettlementsBetween(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, direct, 2)
	assert.Equal(t, toBob.ID, direct[0].ID, "newest first")
	assert.Equal(t, toAlice.ID, direct[1].ID)

	_, err = store.GetSettlement(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteStore_GroupDeleteCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Temp", CreatedBy: "alice", Members: []models.Member{{UserID: "alice"}}}
	require.NoError(t, store.CreateGroup(ctx, group))
	expense := &models.Expense{Description: "x", Amount: d("1"), PaidByUserID: "alice", GroupID: group.ID, SplitType: "equal", CreatedBy: "alice",
		Splits: []models.Split{{UserID: "alice", Amount: d("1")}}}
	require.NoError(t, store.CreateExpense(ctx, expense))

	_, err := store.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", group.ID)
	require.NoError(t, err)

	_, err = store.GetExpense(ctx, expense.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "foreign keys are enforced on pooled connections")
}
