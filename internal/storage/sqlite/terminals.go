package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

// CreateTerminal inserts a new merchant terminal into the database.
func (s *SQLiteStore) CreateTerminal(ctx context.Context, terminal *models.Terminal) error {
	if terminal.ID == "" {
		terminal.ID = uuid.New().String()
	}
	if terminal.CreatedAt == 0 {
		terminal.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO terminals (id, name, secret_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		terminal.ID,
		terminal.Name,
		terminal.SecretHash,
		terminal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}

	return nil
}

// GetTerminal retrieves a terminal by its ID.
func (s *SQLiteStore) GetTerminal(ctx context.Context, terminalID string) (*models.Terminal, error) {
	query := `
		SELECT id, name, secret_hash, created_at
		FROM terminals
		WHERE id = ?
	`

	terminal := &models.Terminal{}
	err := s.db.QueryRowContext(ctx, query, terminalID).Scan(
		&terminal.ID,
		&terminal.Name,
		&terminal.SecretHash,
		&terminal.CreatedAt,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("terminal %s: %w", terminalID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get terminal: %w", err)
	}

	return terminal, nil
}
