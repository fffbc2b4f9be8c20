package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Intent statuses reported by the simulated processor. They mirror the
// processor's manual-capture lifecycle.
const (
	StatusRequiresCapture = "requires_capture"
	StatusRequiresAction  = "requires_action"
	StatusCanceled        = "canceled"
	StatusSucceeded       = "succeeded"
)

// Payment method references that always behave badly, for demos.
const (
	DeclinedCardRef     = "pm_card_chargeDeclined"
	AuthRequiredCardRef = "pm_card_authenticationRequired"
	declinedCardMessage = "Your card was declined."
)

var ErrUnknownAuthorization = errors.New("no such authorization")

type simIntent struct {
	authRef          string
	paymentMethodRef string
	amountCents      int64
	status           string
	metadata         map[string]string
}

// Simulated is an in-memory processor used for demos and tests. Failures are
// scripted per payment method reference.
type Simulated struct {
	mu             sync.Mutex
	latency        time.Duration
	intents        map[string]*simIntent
	byIdempotency  map[string]string
	declines       map[string]string
	requiresAction map[string]bool
	failCancel     map[string]bool
	failCapture    map[string]bool
	calls          map[string]int
}

// NewSimulated creates a simulated processor that answers after latency.
func NewSimulated(latency time.Duration) *Simulated {
	s := &Simulated{
		latency:        latency,
		intents:        make(map[string]*simIntent),
		byIdempotency:  make(map[string]string),
		declines:       make(map[string]string),
		requiresAction: make(map[string]bool),
		failCancel:     make(map[string]bool),
		failCapture:    make(map[string]bool),
		calls:          make(map[string]int),
	}
	s.declines[DeclinedCardRef] = declinedCardMessage
	s.requiresAction[AuthRequiredCardRef] = true
	return s
}

// Decline makes CreateHold fail for the payment method with the given message.
func (s *Simulated) Decline(paymentMethodRef, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declines[paymentMethodRef] = message
}

// RequireAction makes CreateHold succeed without authorizing the funds.
func (s *Simulated) RequireAction(paymentMethodRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requiresAction[paymentMethodRef] = true
}

// FailCancel makes CancelHold fail for holds on the payment method.
func (s *Simulated) FailCancel(paymentMethodRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCancel[paymentMethodRef] = true
}

// FailCapture makes CaptureHold fail for holds on the payment method.
func (s *Simulated) FailCapture(paymentMethodRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCapture[paymentMethodRef] = true
}

// Calls returns how many times op was invoked.
func (s *Simulated) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Status returns the current status of an authorization.
func (s *Simulated) Status(authRef string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[authRef]
	if !ok {
		return "", false
	}
	return in.status, true
}

// Metadata returns the metadata attached to an authorization.
func (s *Simulated) Metadata(authRef string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[authRef]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(in.metadata))
	for k, v := range in.metadata {
		out[k] = v
	}
	return out
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
		return nil
	}
}

func (s *Simulated) CreateHold(ctx context.Context, req HoldRequest) (HoldResult, error) {
	s.mu.Lock()
	s.calls[OpCreateHold]++
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return HoldResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.IdempotencyKey != "" {
		if ref, ok := s.byIdempotency[req.IdempotencyKey]; ok {
			in := s.intents[ref]
			return HoldResult{AuthRef: in.authRef, Authorized: in.status == StatusRequiresCapture, Status: in.status}, nil
		}
	}
	if req.AmountCents <= 0 {
		return HoldResult{}, fmt.Errorf("amount must be positive, got %d", req.AmountCents)
	}
	if req.PaymentMethodRef == "" {
		return HoldResult{}, errors.New("payment method is required")
	}
	if msg, ok := s.declines[req.PaymentMethodRef]; ok {
		return HoldResult{}, errors.New(msg)
	}

	in := &simIntent{
		authRef:          "pi_sim_" + uuid.New().String(),
		paymentMethodRef: req.PaymentMethodRef,
		amountCents:      req.AmountCents,
		status:           StatusRequiresCapture,
		metadata:         req.Metadata,
	}
	if s.requiresAction[req.PaymentMethodRef] {
		in.status = StatusRequiresAction
	}
	s.intents[in.authRef] = in
	if req.IdempotencyKey != "" {
		s.byIdempotency[req.IdempotencyKey] = in.authRef
	}

	return HoldResult{AuthRef: in.authRef, Authorized: in.status == StatusRequiresCapture, Status: in.status}, nil
}

func (s *Simulated) CancelHold(ctx context.Context, authRef string) error {
	s.mu.Lock()
	s.calls[OpCancelHold]++
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[authRef]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAuthorization, authRef)
	}
	if s.failCancel[in.paymentMethodRef] {
		return errors.New("processor unavailable")
	}
	switch in.status {
	case StatusCanceled:
		// Cancelling twice is harmless; compensation may be retried.
		return nil
	case StatusSucceeded:
		return fmt.Errorf("authorization %s was already captured", authRef)
	}
	in.status = StatusCanceled
	return nil
}

func (s *Simulated) CaptureHold(ctx context.Context, authRef string) error {
	s.mu.Lock()
	s.calls[OpCaptureHold]++
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[authRef]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAuthorization, authRef)
	}
	if s.failCapture[in.paymentMethodRef] {
		return errors.New("processor unavailable")
	}
	if in.status != StatusRequiresCapture {
		return fmt.Errorf("authorization %s cannot be captured in status %s", authRef, in.status)
	}
	in.status = StatusSucceeded
	return nil
}
