// Package gateway defines the payment processor boundary: manual-capture
// holds that can later be captured or cancelled.
package gateway

import (
	"context"
	"fmt"
)

// Operation names, used in errors, logs and metric labels.
const (
	OpCreateHold  = "create_hold"
	OpCancelHold  = "cancel_hold"
	OpCaptureHold = "capture_hold"
)

// HoldRequest asks the processor to reserve AmountCents on a payment method.
type HoldRequest struct {
	AmountCents      int64
	PaymentMethodRef string

	// Metadata is attached to the authorization for traceability
	// (group, member, merchant).
	Metadata map[string]string

	// IdempotencyKey lets the processor collapse retried requests.
	IdempotencyKey string
}

// HoldResult describes a created authorization.
type HoldResult struct {
	// AuthRef is the processor's identifier for the authorization.
	AuthRef string

	// Authorized is true when the processor reports the funds as held and
	// awaiting capture.
	Authorized bool

	// Status is the processor's raw status string.
	Status string
}

// Gateway is the payment processor client. Every call may fail
// independently; implementations apply their own timeout and retry policy.
type Gateway interface {
	CreateHold(ctx context.Context, req HoldRequest) (HoldResult, error)
	CancelHold(ctx context.Context, authRef string) error
	CaptureHold(ctx context.Context, authRef string) error
}

// Error is a failed gateway call attributed to one member.
type Error struct {
	Op       string
	MemberID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s for member %s: %v", e.Op, e.MemberID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
