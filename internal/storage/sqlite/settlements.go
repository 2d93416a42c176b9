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

const settlementColumns = "id, group_id, paid_by_user_id, received_by_user_id, amount, note, date, created_by, created_at"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = now
	}
	if settlement.Date == 0 {
		settlement.Date = now
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		settlement.ID, nullString(settlement.GroupID), settlement.PaidByUserID, settlement.ReceivedByUserID,
		settlement.Amount.String(), nullString(settlement.Note), settlement.Date, settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY date DESC, created_at DESC",
		groupID,
	)
}

// ListDirectSettlementsBetween retrieves non-group settlements between two users, newest first.
func (s *SQLiteStore) ListDirectSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE group_id IS NULL
		   AND ((paid_by_user_id = ? AND received_by_user_id = ?)
		     OR (paid_by_user_id = ? AND received_by_user_id = ?))
		 ORDER BY date DESC, created_at DESC`,
		userA, userB, userB, userA,
	)
}

func (s *SQLiteStore) listSettlements(ctx context.Context, query string, args ...interface{}) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var groupID, note sql.NullString
	if err := row.Scan(
		&settlement.ID,
		&groupID,
		&settlement.PaidByUserID,
		&settlement.ReceivedByUserID,
		&settlement.Amount,
		&note,
		&settlement.Date,
		&settlement.CreatedBy,
		&settlement.CreatedAt,
	); err != nil {
		return nil, err
	}
	settlement.GroupID = groupID.String
	settlement.Note = note.String
	return settlement, nil
}
