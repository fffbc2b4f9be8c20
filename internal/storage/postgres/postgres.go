// Package postgres provides a PostgreSQL-backed implementation of storage.Store.
//
// Confirmations, holds and members are stored as JSONB documents on their
// parent row, so every transaction update is a single-row compare-and-swap.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    members JSONB NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS group_transactions (
    seq BIGSERIAL UNIQUE,
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id),
    total_cents BIGINT NOT NULL CHECK (total_cents > 0),
    merchant TEXT NOT NULL,
    merchant_auth_status TEXT NOT NULL,
    status TEXT NOT NULL,
    confirmations JSONB NOT NULL,
    holds JSONB NOT NULL,
    auth_code TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    version BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_transactions_group_id ON group_transactions(group_id, created_at DESC);

CREATE TABLE IF NOT EXISTS terminals (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    secret_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL
);
`

// PostgresStore implements storage.Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New connects to the database, verifies the connection and runs migrations.
func New(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type memberDoc struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	PaymentMethodRef string `json:"payment_method_ref"`
	Linked           bool   `json:"linked"`
}

type confirmationDoc struct {
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name"`
	Confirmed   bool   `json:"confirmed"`
	Declined    bool   `json:"declined"`
	ConfirmedAt int64  `json:"confirmed_at,omitempty"`
}

type holdDoc struct {
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name"`
	AmountCents int64  `json:"amount_cents"`
	AuthRef     string `json:"auth_ref,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateGroup inserts a group with its members.
func (s *PostgresStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	members := make([]memberDoc, len(group.Members))
	for i := range group.Members {
		m := &group.Members[i]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		members[i] = memberDoc{ID: m.ID, Name: m.Name, Email: m.Email, PaymentMethodRef: m.PaymentMethodRef, Linked: m.Linked}
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO groups (id, name, members, created_at) VALUES ($1, $2, $3, $4)",
		group.ID, group.Name, members, group.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("group %s already exists", group.ID)
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var (
		group   models.Group
		members []memberDoc
	)
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, members, created_at FROM groups WHERE id = $1", groupID,
	).Scan(&group.ID, &group.Name, &members, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	for _, m := range members {
		group.Members = append(group.Members, models.GroupMember{
			ID: m.ID, Name: m.Name, Email: m.Email, PaymentMethodRef: m.PaymentMethodRef, Linked: m.Linked,
		})
	}
	return &group, nil
}

// CreateTerminal inserts a merchant terminal.
func (s *PostgresStore) CreateTerminal(ctx context.Context, terminal *models.Terminal) error {
	if terminal.ID == "" {
		terminal.ID = uuid.New().String()
	}
	if terminal.CreatedAt == 0 {
		terminal.CreatedAt = time.Now().Unix()
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO terminals (id, name, secret_hash, created_at) VALUES ($1, $2, $3, $4)",
		terminal.ID, terminal.Name, terminal.SecretHash, terminal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	return nil
}

// GetTerminal retrieves a terminal by ID.
func (s *PostgresStore) GetTerminal(ctx context.Context, terminalID string) (*models.Terminal, error) {
	var t models.Terminal
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, secret_hash, created_at FROM terminals WHERE id = $1", terminalID,
	).Scan(&t.ID, &t.Name, &t.SecretHash, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("terminal %s: %w", terminalID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get terminal: %w", err)
	}
	return &t, nil
}
