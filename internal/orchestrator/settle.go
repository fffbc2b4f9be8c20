package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/groupcard/internal/gateway"
	"github.com/mmynk/groupcard/internal/metrics"
	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

// Capture charges every authorized hold of an approved transaction.
//
// Captures run concurrently and fail independently. A hold whose capture
// fails keeps status authorized with the processor's error; the transaction
// is marked captured regardless.
func (o *Orchestrator) Capture(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error) {
	unlock := o.locks.Lock(transactionID)
	defer unlock()

	txn, err := o.loadGroupTransaction(ctx, groupID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.StatusApproved {
		return nil, fmt.Errorf("%w: cannot capture transaction %s in status %s", ErrInvalidState, txn.ID, txn.Status)
	}

	next := txn.Clone()
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, h := range next.Holds {
		if h.Status != models.HoldAuthorized || h.AuthRef == "" {
			continue
		}
		g.Go(func() error {
			if err := o.gw.CaptureHold(ctx, h.AuthRef); err != nil {
				metrics.CompensationFailuresTotal.WithLabelValues(gateway.OpCaptureHold).Inc()
				o.logger.Error("Capture failed for hold",
					"transaction_id", txn.ID,
					"member_id", h.MemberID,
					"auth_ref", h.AuthRef,
					"error", &gateway.Error{Op: gateway.OpCaptureHold, MemberID: h.MemberID, Err: err},
				)
				next.Holds[i].Error = err.Error()
				return nil
			}
			next.Holds[i].Status = models.HoldCaptured
			next.Holds[i].Error = ""
			return nil
		})
	}
	// Never non-nil; capture failures are kept on the hold.
	_ = g.Wait()

	if err := next.Transition(models.StatusCaptured); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := o.txns.UpdateTransaction(ctx, &next); err != nil {
		o.logger.Error("Failed to persist capture", "transaction_id", txn.ID, "error", err)
		return nil, o.updateError(err)
	}

	o.logger.Info("Transaction captured",
		"group_id", groupID,
		"transaction_id", txn.ID,
		"captured_holds", countHolds(next.Holds, models.HoldCaptured),
		"holds", len(next.Holds),
	)
	recordOutcome(&next)
	return &next, nil
}

// Release cancels every hold that still reserves funds. Cancel failures are
// logged and the hold is marked released anyway. An approved transaction
// moves to released; a declined one stays declined.
func (o *Orchestrator) Release(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error) {
	unlock := o.locks.Lock(transactionID)
	defer unlock()

	txn, err := o.loadGroupTransaction(ctx, groupID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.StatusApproved && txn.Status != models.StatusDeclined {
		return nil, fmt.Errorf("%w: cannot release transaction %s in status %s", ErrInvalidState, txn.ID, txn.Status)
	}
	if countReleasable(txn.Holds) == 0 {
		return nil, fmt.Errorf("%w: transaction %s has no holds to release", ErrInvalidState, txn.ID)
	}

	next := txn.Clone()
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, h := range next.Holds {
		if !h.Releasable() {
			continue
		}
		if h.AuthRef == "" {
			next.Holds[i].Status = models.HoldReleased
			continue
		}
		g.Go(func() error {
			if err := o.gw.CancelHold(ctx, h.AuthRef); err != nil {
				metrics.CompensationFailuresTotal.WithLabelValues(gateway.OpCancelHold).Inc()
				o.logger.Warn("Cancel failed during release",
					"transaction_id", txn.ID,
					"member_id", h.MemberID,
					"auth_ref", h.AuthRef,
					"error", err,
				)
				next.Holds[i].Error = err.Error()
			} else {
				next.Holds[i].Error = ""
			}
			next.Holds[i].Status = models.HoldReleased
			return nil
		})
	}
	// Never non-nil; cancel failures are kept on the hold.
	_ = g.Wait()

	if next.Status == models.StatusApproved {
		if err := next.Transition(models.StatusReleased); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
	}
	if err := o.txns.UpdateTransaction(ctx, &next); err != nil {
		o.logger.Error("Failed to persist release", "transaction_id", txn.ID, "error", err)
		return nil, o.updateError(err)
	}

	o.logger.Info("Transaction holds released",
		"group_id", groupID,
		"transaction_id", txn.ID,
		"status", next.Status,
	)
	recordOutcome(&next)
	return &next, nil
}

func (o *Orchestrator) loadGroupTransaction(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error) {
	if _, err := o.loadGroup(ctx, groupID); err != nil {
		return nil, err
	}
	txn, err := o.txns.GetGroupTransaction(ctx, groupID, transactionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s in group %s", ErrTransactionNotFound, transactionID, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return txn, nil
}

func countHolds(holds []models.MemberHold, status models.HoldStatus) int {
	n := 0
	for _, h := range holds {
		if h.Status == status {
			n++
		}
	}
	return n
}

func countReleasable(holds []models.MemberHold) int {
	n := 0
	for _, h := range holds {
		if h.Releasable() {
			n++
		}
	}
	return n
}
