package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/storage"
)

const expenseColumns = "id, description, amount, paid_by_user_id, group_id, split_type, date, created_by, created_at"

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.Description, expense.Amount.String(), expense.PaidByUserID,
		nullString(expense.GroupID), expense.SplitType, expense.Date, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.UserID, split.Amount.String(), split.Paid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense and its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListExpensesByGroup retrieves every expense in a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC",
		groupID,
	)
}

// ListDirectExpensesPaidBy retrieves non-group expenses paid by userID, newest first.
func (s *SQLiteStore) ListDirectExpensesPaidBy(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE paid_by_user_id = ? AND group_id IS NULL ORDER BY date DESC, created_at DESC",
		userID,
	)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// loadSplits fills in the splits of every expense with a single query.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	args := make([]interface{}, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		args[i] = e.ID
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id, amount, paid FROM expense_splits WHERE expense_id IN ("+
			placeholders(len(args))+") ORDER BY expense_id, position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var split models.Split
		if err := rows.Scan(&expenseID, &split.UserID, &split.Amount, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	if err := row.Scan(
		&expense.ID,
		&expense.Description,
		&expense.Amount,
		&expense.PaidByUserID,
		&groupID,
		&expense.SplitType,
		&expense.Date,
		&expense.CreatedBy,
		&expense.CreatedAt,
	); err != nil {
		return nil, err
	}
	expense.GroupID = groupID.String
	return expense, nil
}
