package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/tabkeeper/internal/storage"
)

// GetToken returns the saved session token.
func (s *SQLiteStore) GetToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT token FROM session WHERE id = 1").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session token: %w", err)
	}
	return token, nil
}

// SaveToken stores the session token, replacing any previous one.
func (s *SQLiteStore) SaveToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO session (id, token, saved_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			saved_at = excluded.saved_at
	`
	if _, err := s.db.ExecContext(ctx, query, token, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

// DeleteToken removes the saved session token.
func (s *SQLiteStore) DeleteToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	return nil
}
