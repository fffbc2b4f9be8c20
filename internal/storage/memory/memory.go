// Package memory provides an in-process implementation of storage.Store,
// used for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in maps guarded by one RWMutex.
type MemoryStore struct {
	mu           sync.RWMutex
	groups       map[string]models.Group
	transactions map[string]models.GroupTransaction
	byGroup      map[string][]string // group ID -> transaction IDs, oldest first
	terminals    map[string]models.Terminal
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		groups:       make(map[string]models.Group),
		transactions: make(map[string]models.GroupTransaction),
		byGroup:      make(map[string][]string),
		terminals:    make(map[string]models.Terminal),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	for i := range group.Members {
		if group.Members[i].ID == "" {
			group.Members[i].ID = uuid.New().String()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("group %s already exists", group.ID)
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	g = g.Clone()
	return &g, nil
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, txn *models.GroupTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	txn.Version = 1

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[txn.ID]; exists {
		return fmt.Errorf("transaction %s already exists", txn.ID)
	}
	s.transactions[txn.ID] = txn.Clone()
	s.byGroup[txn.GroupID] = append(s.byGroup[txn.GroupID], txn.ID)
	return nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	t = t.Clone()
	return &t, nil
}

func (s *MemoryStore) GetGroupTransaction(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error) {
	t, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.GroupID != groupID {
		return nil, fmt.Errorf("transaction %s in group %s: %w", transactionID, groupID, storage.ErrNotFound)
	}
	return t, nil
}

func (s *MemoryStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.GroupTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byGroup[groupID]
	out := make([]*models.GroupTransaction, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		t := s.transactions[ids[i]].Clone()
		out = append(out, &t)
	}
	return out, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, txn *models.GroupTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.transactions[txn.ID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", txn.ID, storage.ErrNotFound)
	}
	if current.Version != txn.Version {
		return fmt.Errorf("transaction %s at version %d, have %d: %w",
			txn.ID, current.Version, txn.Version, storage.ErrVersionConflict)
	}

	next := txn.Clone()
	// Identity fields are immutable after creation.
	next.GroupID = current.GroupID
	next.TotalCents = current.TotalCents
	next.Merchant = current.Merchant
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1

	s.transactions[txn.ID] = next
	txn.Version = next.Version
	return nil
}

func (s *MemoryStore) CreateTerminal(ctx context.Context, terminal *models.Terminal) error {
	if terminal.ID == "" {
		terminal.ID = uuid.New().String()
	}
	if terminal.CreatedAt == 0 {
		terminal.CreatedAt = time.Now().Unix()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminals[terminal.ID] = *terminal
	return nil
}

func (s *MemoryStore) GetTerminal(ctx context.Context, terminalID string) (*models.Terminal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.terminals[terminalID]
	if !ok {
		return nil, fmt.Errorf("terminal %s: %w", terminalID, storage.ErrNotFound)
	}
	return &t, nil
}
