package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

// maxConfirmationAttempts bounds re-reads after losing a compare-and-swap
// to a writer in another process.
const maxConfirmationAttempts = 3

// PurchaseRequest is a tap at a merchant on behalf of a group.
type PurchaseRequest struct {
	GroupID    string
	TotalCents int64
	Merchant   string

	// Confirmations optionally pre-seeds member answers collected earlier.
	// When nil every member starts out waiting.
	Confirmations []models.MemberConfirmation

	// BypassConfirmations skips the wait for consent.
	BypassConfirmations bool
}

// ProposePurchase runs the confirmation gate for a new purchase.
//
// The returned transaction is in one of three shapes: awaiting_confirmations
// (no holds), declined because a member refused (no holds), or the
// approved/declined outcome of a split authorization. In every case the
// transaction is persisted exactly once.
func (o *Orchestrator) ProposePurchase(ctx context.Context, req PurchaseRequest) (*models.GroupTransaction, error) {
	if req.TotalCents <= 0 {
		return nil, fmt.Errorf("%w: total must be positive, got %d", ErrInvalidAmount, req.TotalCents)
	}
	merchant := strings.TrimSpace(req.Merchant)
	if merchant == "" {
		return nil, fmt.Errorf("%w: merchant is required", ErrInvalidInput)
	}

	group, err := o.loadGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if err := validateGroup(group, req.TotalCents); err != nil {
		return nil, err
	}

	confirmations, err := o.seedConfirmations(group, req.Confirmations, req.BypassConfirmations)
	if err != nil {
		return nil, err
	}

	txn := &models.GroupTransaction{
		ID:                 uuid.New().String(),
		GroupID:            group.ID,
		TotalCents:         req.TotalCents,
		Merchant:           merchant,
		MerchantAuthStatus: models.MerchantAuthPending,
		Confirmations:      confirmations,
		CreatedAt:          o.now().Unix(),
	}

	log := o.logger.With("group_id", group.ID, "transaction_id", txn.ID, "merchant", merchant)

	switch {
	case txn.AnyDeclined():
		txn.Status = models.StatusDeclined
		txn.MerchantAuthStatus = models.MerchantAuthDeclined
		log.Info("Purchase declined by member before authorization")

	case !req.BypassConfirmations && !txn.AllConfirmed():
		txn.Status = models.StatusAwaitingConfirmations
		log.Info("Purchase awaiting member confirmations", "members", len(confirmations))

	default:
		log.Info("Purchase cleared for authorization", "total_cents", req.TotalCents, "bypass", req.BypassConfirmations)
		holds, approved := o.authorize(ctx, group, txn)
		applyDecision(txn, holds, approved)
	}

	if err := o.txns.CreateTransaction(ctx, txn); err != nil {
		// Holds placed for a record that never got written must not linger.
		if len(txn.Holds) > 0 {
			o.compensate(ctx, txn, txn.Holds)
		}
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	recordOutcome(txn)
	return txn, nil
}

// RecordConfirmation applies one member's answer to an awaiting transaction
// and re-evaluates the gate. A decline is terminal; the last confirmation
// moves the transaction to preauth.
func (o *Orchestrator) RecordConfirmation(ctx context.Context, transactionID, memberID string, confirmed bool) (*models.GroupTransaction, error) {
	unlock := o.locks.Lock(transactionID)
	defer unlock()

	for attempt := 1; ; attempt++ {
		txn, err := o.loadTransaction(ctx, transactionID)
		if err != nil {
			return nil, err
		}

		next, changed, err := o.applyConfirmation(txn, memberID, confirmed)
		if err != nil {
			return nil, err
		}
		if !changed {
			return txn, nil
		}

		err = o.txns.UpdateTransaction(ctx, next)
		if errors.Is(err, storage.ErrVersionConflict) && attempt < maxConfirmationAttempts {
			o.logger.Warn("Confirmation lost a concurrent update, retrying",
				"transaction_id", transactionID, "member_id", memberID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, o.updateError(err)
		}

		o.logger.Info("Member confirmation recorded",
			"transaction_id", transactionID,
			"member_id", memberID,
			"confirmed", confirmed,
			"status", next.Status,
		)
		if next.Status != txn.Status {
			recordOutcome(next)
		}
		return next, nil
	}
}

// applyConfirmation computes the next state. changed is false when the
// member already gave the same answer.
func (o *Orchestrator) applyConfirmation(txn *models.GroupTransaction, memberID string, confirmed bool) (*models.GroupTransaction, bool, error) {
	idx := -1
	for i, c := range txn.Confirmations {
		if c.MemberID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, fmt.Errorf("%w: %s in transaction %s", ErrMemberNotFound, memberID, txn.ID)
	}

	current := txn.Confirmations[idx]
	if !current.Waiting() {
		if current.Confirmed == confirmed {
			return txn, false, nil
		}
		return nil, false, fmt.Errorf("%w: member %s already answered", ErrInvalidState, memberID)
	}
	if txn.Status != models.StatusAwaitingConfirmations {
		return nil, false, fmt.Errorf("%w: transaction %s is %s", ErrInvalidState, txn.ID, txn.Status)
	}

	next := txn.Clone()
	next.Confirmations[idx].Confirmed = confirmed
	next.Confirmations[idx].Declined = !confirmed
	next.Confirmations[idx].ConfirmedAt = o.now().Unix()

	switch {
	case next.AnyDeclined():
		if err := next.Transition(models.StatusDeclined); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		next.MerchantAuthStatus = models.MerchantAuthDeclined
	case next.AllConfirmed():
		if err := next.Transition(models.StatusPreauth); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
	}
	return &next, true, nil
}

// seedConfirmations builds one confirmation per member in group order.
func (o *Orchestrator) seedConfirmations(group *models.Group, supplied []models.MemberConfirmation, bypass bool) ([]models.MemberConfirmation, error) {
	now := o.now().Unix()
	out := make([]models.MemberConfirmation, len(group.Members))

	if supplied == nil {
		for i, m := range group.Members {
			out[i] = models.MemberConfirmation{MemberID: m.ID, MemberName: m.Name}
			if bypass {
				out[i].Confirmed = true
				out[i].ConfirmedAt = now
			}
		}
		return out, nil
	}

	byMember := make(map[string]models.MemberConfirmation, len(supplied))
	for _, c := range supplied {
		if _, ok := group.Member(c.MemberID); !ok {
			return nil, fmt.Errorf("%w: confirmation for unknown member %s", ErrInvalidInput, c.MemberID)
		}
		if _, dup := byMember[c.MemberID]; dup {
			return nil, fmt.Errorf("%w: duplicate confirmation for member %s", ErrInvalidInput, c.MemberID)
		}
		if c.Confirmed && c.Declined {
			return nil, fmt.Errorf("%w: member %s both confirmed and declined", ErrInvalidInput, c.MemberID)
		}
		byMember[c.MemberID] = c
	}
	if len(byMember) != len(group.Members) {
		return nil, fmt.Errorf("%w: expected %d confirmations, got %d", ErrInvalidInput, len(group.Members), len(byMember))
	}

	for i, m := range group.Members {
		c := byMember[m.ID]
		c.MemberName = m.Name
		if !c.Waiting() && c.ConfirmedAt == 0 {
			c.ConfirmedAt = now
		}
		out[i] = c
	}
	return out, nil
}

func (o *Orchestrator) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := o.groups.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return group, nil
}

func (o *Orchestrator) loadTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error) {
	txn, err := o.txns.GetTransaction(ctx, transactionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return txn, nil
}

func (o *Orchestrator) updateError(err error) error {
	if errors.Is(err, storage.ErrVersionConflict) {
		return fmt.Errorf("%w: %v", ErrConcurrentUpdate, err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrTransactionNotFound, err)
	}
	return fmt.Errorf("failed to save transaction: %w", err)
}

// validateGroup checks everything authorization needs before any gateway call.
func validateGroup(group *models.Group, totalCents int64) error {
	if len(group.Members) == 0 {
		return fmt.Errorf("%w: group %s has no members", ErrInvalidInput, group.ID)
	}
	if totalCents < int64(len(group.Members)) {
		return fmt.Errorf("%w: %d cents cannot be split across %d members", ErrInvalidAmount, totalCents, len(group.Members))
	}
	for _, m := range group.Members {
		if !m.CanAuthorize() {
			return fmt.Errorf("%w: %s", ErrMissingPaymentMethod, m.ID)
		}
	}
	return nil
}
