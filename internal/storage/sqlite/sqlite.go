// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas are set per connection through the DSN so every pooled
	// connection enforces foreign keys.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, nullString(group.Description), group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertMembers(ctx, tx, group.ID, 0, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members in join order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &description, &group.CreatedBy, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Description = description.String

	members, err := s.listMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

// ListGroupsForUser returns every group userID belongs to, newest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// AddGroupMembers appends members to an existing group. Users already in the
// group keep their current role.
func (s *SQLiteStore) AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?", groupID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to read member positions: %w", err)
	}

	if err := insertMembers(ctx, tx, groupID, next, members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, groupID string, start int, members []models.Member) error {
	for i, m := range members {
		role := m.Role
		if role == "" {
			role = models.RoleMember
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id, role, position) VALUES (?, ?, ?, ?)",
			groupID, m.UserID, role, start+i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, role FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
