package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/groupcard/internal/models"
)

// NewMember describes a member to add when creating a group.
type NewMember struct {
	ID               string
	Name             string
	Email            string
	PaymentMethodRef string
}

// CreateGroup validates and stores a new group. Every member needs a name
// and a payment method reference; member IDs are generated when empty.
func (o *Orchestrator) CreateGroup(ctx context.Context, name string, members []NewMember) (*models.Group, error) {
	return o.CreateGroupWithID(ctx, "", name, members)
}

// CreateGroupWithID is CreateGroup with a caller-chosen group ID, used for
// seeding well-known groups. An empty id is generated by the store.
func (o *Orchestrator) CreateGroupWithID(ctx context.Context, id, name string, members []NewMember) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: at least one member is required", ErrInvalidInput)
	}

	group := &models.Group{
		ID:        id,
		Name:      name,
		Members:   make([]models.GroupMember, 0, len(members)),
		CreatedAt: o.now().Unix(),
	}
	seen := make(map[string]bool, len(members))
	for i, m := range members {
		memberName := strings.TrimSpace(m.Name)
		if memberName == "" {
			return nil, fmt.Errorf("%w: member %d has no name", ErrInvalidInput, i)
		}
		if m.PaymentMethodRef == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPaymentMethod, memberName)
		}
		if m.ID != "" {
			if seen[m.ID] {
				return nil, fmt.Errorf("%w: duplicate member id %s", ErrInvalidInput, m.ID)
			}
			seen[m.ID] = true
		}
		group.Members = append(group.Members, models.GroupMember{
			ID:               m.ID,
			Name:             memberName,
			Email:            m.Email,
			PaymentMethodRef: m.PaymentMethodRef,
			Linked:           true,
		})
	}

	if err := o.groups.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	o.logger.Info("Group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// GetGroup returns a group by ID.
func (o *Orchestrator) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return o.loadGroup(ctx, groupID)
}

// GetTransaction returns a snapshot of a transaction. It never mutates.
func (o *Orchestrator) GetTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error) {
	return o.loadTransaction(ctx, transactionID)
}

// ListTransactions returns the group's transactions, latest first.
func (o *Orchestrator) ListTransactions(ctx context.Context, groupID string) ([]*models.GroupTransaction, error) {
	if _, err := o.loadGroup(ctx, groupID); err != nil {
		return nil, err
	}
	txns, err := o.txns.ListTransactionsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}
