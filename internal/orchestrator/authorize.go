package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/groupcard/internal/calculator"
	"github.com/mmynk/groupcard/internal/gateway"
	"github.com/mmynk/groupcard/internal/metrics"
	"github.com/mmynk/groupcard/internal/models"
)

// AuthorizeTransaction runs the split authorization for a transaction that
// cleared the confirmation gate and is waiting in preauth.
//
// At most one authorization outcome is persisted. If another writer gets
// there first, the holds placed by this call are cancelled and
// ErrConcurrentUpdate is returned.
func (o *Orchestrator) AuthorizeTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error) {
	unlock := o.locks.Lock(transactionID)
	defer unlock()

	txn, err := o.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.StatusPreauth {
		return nil, fmt.Errorf("%w: transaction %s is %s, not %s", ErrInvalidState, txn.ID, txn.Status, models.StatusPreauth)
	}

	group, err := o.loadGroup(ctx, txn.GroupID)
	if err != nil {
		return nil, err
	}
	members, err := confirmedMembers(group, txn)
	if err != nil {
		return nil, err
	}
	if err := validateGroup(&models.Group{ID: group.ID, Members: members}, txn.TotalCents); err != nil {
		return nil, err
	}

	next := txn.Clone()
	holds, approved := o.authorize(ctx, &models.Group{ID: group.ID, Members: members}, &next)
	applyDecision(&next, holds, approved)

	if err := o.txns.UpdateTransaction(ctx, &next); err != nil {
		o.logger.Error("Failed to persist authorization, cancelling holds",
			"transaction_id", txn.ID, "error", err)
		o.compensate(ctx, &next, next.Holds)
		return nil, o.updateError(err)
	}

	recordOutcome(&next)
	return &next, nil
}

// confirmedMembers resolves the transaction's confirmations to group members
// in confirmation order.
func confirmedMembers(group *models.Group, txn *models.GroupTransaction) ([]models.GroupMember, error) {
	members := make([]models.GroupMember, 0, len(txn.Confirmations))
	for _, c := range txn.Confirmations {
		m, ok := group.Member(c.MemberID)
		if !ok {
			return nil, fmt.Errorf("%w: %s left group %s", ErrMemberNotFound, c.MemberID, group.ID)
		}
		members = append(members, m)
	}
	return members, nil
}

// authorize splits the total, places one hold per member concurrently and
// waits for every result. When not every hold is authorized the authorized
// ones are cancelled before returning.
func (o *Orchestrator) authorize(ctx context.Context, group *models.Group, txn *models.GroupTransaction) ([]models.MemberHold, bool) {
	shares, err := calculator.SplitEvenly(txn.TotalCents, len(group.Members))
	if err != nil {
		// validateGroup runs first, so this only fires on a programming error.
		o.logger.Error("Failed to split total", "transaction_id", txn.ID, "error", err)
		return nil, false
	}

	// Gateway calls outlive a disconnected caller; holds must always be
	// accounted for.
	ctx = context.WithoutCancel(ctx)

	// Keys are scoped to this attempt so a retried authorization places new
	// holds instead of replaying ones already cancelled.
	attempt := uuid.New().String()

	holds := make([]models.MemberHold, len(group.Members))
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, member := range group.Members {
		g.Go(func() error {
			holds[i] = o.createHold(ctx, group.ID, txn, attempt, member, shares[i])
			return nil
		})
	}
	// Workers record failures on their hold and always return nil; the group
	// only bounds concurrency.
	_ = g.Wait()

	approved := true
	for _, h := range holds {
		if h.Status != models.HoldAuthorized {
			approved = false
			break
		}
	}

	if !approved {
		holds = o.compensate(ctx, txn, holds)
	}
	return holds, approved
}

func (o *Orchestrator) createHold(ctx context.Context, groupID string, txn *models.GroupTransaction, attempt string, member models.GroupMember, amount int64) models.MemberHold {
	hold := models.MemberHold{
		MemberID:    member.ID,
		MemberName:  member.Name,
		AmountCents: amount,
		Status:      models.HoldPending,
	}

	res, err := o.gw.CreateHold(ctx, gateway.HoldRequest{
		AmountCents:      amount,
		PaymentMethodRef: member.PaymentMethodRef,
		Metadata: map[string]string{
			"groupId":    groupID,
			"memberId":   member.ID,
			"memberName": member.Name,
			"merchant":   txn.Merchant,
		},
		IdempotencyKey: holdIdempotencyKey(txn.ID, attempt, member.ID),
	})
	if err != nil {
		gwErr := &gateway.Error{Op: gateway.OpCreateHold, MemberID: member.ID, Err: err}
		o.logger.Warn("Hold creation failed",
			"transaction_id", txn.ID,
			"member_id", member.ID,
			"amount_cents", amount,
			"error", gwErr,
		)
		hold.Status = models.HoldFailed
		hold.Error = err.Error()
		return hold
	}

	hold.AuthRef = res.AuthRef
	if !res.Authorized {
		o.logger.Warn("Hold not authorized",
			"transaction_id", txn.ID,
			"member_id", member.ID,
			"auth_ref", res.AuthRef,
			"gateway_status", res.Status,
		)
		hold.Status = models.HoldFailed
		hold.Error = fmt.Sprintf("authorization not completed: %s", res.Status)
		return hold
	}

	hold.Status = models.HoldAuthorized
	return hold
}

// compensate cancels every authorized hold concurrently and returns the next
// hold list. A hold whose cancel fails stays authorized with the error text
// so a later Release can retry it. Holds that never reached authorized are
// left alone.
func (o *Orchestrator) compensate(ctx context.Context, txn *models.GroupTransaction, holds []models.MemberHold) []models.MemberHold {
	ctx = context.WithoutCancel(ctx)
	next := append([]models.MemberHold(nil), holds...)

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, h := range next {
		if h.Status != models.HoldAuthorized || h.AuthRef == "" {
			continue
		}
		g.Go(func() error {
			if err := o.gw.CancelHold(ctx, h.AuthRef); err != nil {
				metrics.CompensationFailuresTotal.WithLabelValues(gateway.OpCancelHold).Inc()
				o.logger.Error("Compensating cancel failed, hold left authorized",
					"transaction_id", txn.ID,
					"member_id", h.MemberID,
					"auth_ref", h.AuthRef,
					"error", err,
				)
				next[i].Error = err.Error()
				return nil
			}
			next[i].Status = models.HoldReleased
			next[i].Error = ""
			return nil
		})
	}
	// Never non-nil; cancel failures are kept on the hold.
	_ = g.Wait()
	return next
}

func holdIdempotencyKey(transactionID, attempt, memberID string) string {
	return transactionID + ":" + attempt + ":" + memberID
}

// applyDecision folds the fan-in result into the transaction.
func applyDecision(txn *models.GroupTransaction, holds []models.MemberHold, approved bool) {
	txn.Holds = holds
	if approved {
		txn.Status = models.StatusApproved
		txn.MerchantAuthStatus = models.MerchantAuthApproved
		txn.AuthCode = newAuthCode()
		return
	}
	txn.Status = models.StatusDeclined
	txn.MerchantAuthStatus = models.MerchantAuthDeclined
}
