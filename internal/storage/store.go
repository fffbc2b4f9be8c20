// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/groupcard/internal/models"
)

var (
	// ErrNotFound is returned when a group, transaction or terminal does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by UpdateTransaction when the stored
	// version no longer matches the caller's expected version.
	ErrVersionConflict = errors.New("transaction was modified concurrently")
)

// GroupStore persists groups.
type GroupStore interface {
	// CreateGroup persists a new group. ID, member IDs and CreatedAt are
	// populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
}

// TransactionStore persists group transactions. Transactions are never deleted.
//
// Implementations return copies: mutating a returned value never changes
// stored state until it is written back with UpdateTransaction.
type TransactionStore interface {
	// CreateTransaction inserts a new transaction. ID and CreatedAt are
	// populated when empty; Version starts at 1.
	CreateTransaction(ctx context.Context, txn *models.GroupTransaction) error

	// GetTransaction looks a transaction up by ID across all groups.
	GetTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error)

	// GetGroupTransaction looks a transaction up within one group.
	GetGroupTransaction(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error)

	// ListTransactionsByGroup returns the group's transactions, latest first.
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.GroupTransaction, error)

	// UpdateTransaction replaces the mutable fields of a transaction
	// (merchant auth status, confirmations, holds, status, auth code) in one
	// atomic write. txn.Version must equal the stored version, otherwise
	// ErrVersionConflict is returned and nothing is written. On success
	// txn.Version is incremented.
	UpdateTransaction(ctx context.Context, txn *models.GroupTransaction) error
}

// TerminalStore persists merchant terminals.
type TerminalStore interface {
	CreateTerminal(ctx context.Context, terminal *models.Terminal) error
	GetTerminal(ctx context.Context, terminalID string) (*models.Terminal, error)
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends (memory, SQLite, PostgreSQL)
// without changing the orchestrator or service layer.
type Store interface {
	GroupStore
	TransactionStore
	TerminalStore

	// Close releases any resources held by the store.
	Close() error
}
