package gateway

import (
	"context"
	"errors"
	"testing"
)

func TestSimulatedLifecycle(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulated(0)

	res, err := sim.CreateHold(ctx, HoldRequest{
		AmountCents:      600,
		PaymentMethodRef: "pm_card_visa",
		Metadata:         map[string]string{"memberId": "m1"},
	})
	if err != nil {
		t.Fatalf("CreateHold failed: %v", err)
	}
	if !res.Authorized || res.Status != StatusRequiresCapture || res.AuthRef == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := sim.Metadata(res.AuthRef)["memberId"]; got != "m1" {
		t.Errorf("metadata memberId = %q, want m1", got)
	}

	if err := sim.CaptureHold(ctx, res.AuthRef); err != nil {
		t.Fatalf("CaptureHold failed: %v", err)
	}
	if status, _ := sim.Status(res.AuthRef); status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", status)
	}
	if err := sim.CancelHold(ctx, res.AuthRef); err == nil {
		t.Error("cancelling a captured hold should fail")
	}
}

func TestSimulatedScriptedFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("decline", func(t *testing.T) {
		sim := NewSimulated(0)
		_, err := sim.CreateHold(ctx, HoldRequest{AmountCents: 100, PaymentMethodRef: DeclinedCardRef})
		if err == nil || err.Error() != declinedCardMessage {
			t.Errorf("expected decline, got %v", err)
		}
	})

	t.Run("requires action", func(t *testing.T) {
		sim := NewSimulated(0)
		res, err := sim.CreateHold(ctx, HoldRequest{AmountCents: 100, PaymentMethodRef: AuthRequiredCardRef})
		if err != nil {
			t.Fatalf("CreateHold failed: %v", err)
		}
		if res.Authorized || res.Status != StatusRequiresAction {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		sim := NewSimulated(0)
		res, _ := sim.CreateHold(ctx, HoldRequest{AmountCents: 100, PaymentMethodRef: "pm_ok"})
		if err := sim.CancelHold(ctx, res.AuthRef); err != nil {
			t.Fatalf("first cancel failed: %v", err)
		}
		if err := sim.CancelHold(ctx, res.AuthRef); err != nil {
			t.Errorf("second cancel failed: %v", err)
		}
		if err := sim.CaptureHold(ctx, res.AuthRef); err == nil {
			t.Error("capturing a cancelled hold should fail")
		}
	})

	t.Run("unknown authorization", func(t *testing.T) {
		sim := NewSimulated(0)
		if err := sim.CaptureHold(ctx, "pi_missing"); !errors.Is(err, ErrUnknownAuthorization) {
			t.Errorf("expected ErrUnknownAuthorization, got %v", err)
		}
	})

	t.Run("idempotency key returns the same authorization", func(t *testing.T) {
		sim := NewSimulated(0)
		req := HoldRequest{AmountCents: 100, PaymentMethodRef: "pm_ok", IdempotencyKey: "txn-1:m1"}
		first, _ := sim.CreateHold(ctx, req)
		second, _ := sim.CreateHold(ctx, req)
		if first.AuthRef != second.AuthRef {
			t.Errorf("expected same auth ref, got %s and %s", first.AuthRef, second.AuthRef)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		sim := NewSimulated(50_000_000)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := sim.CreateHold(cctx, HoldRequest{AmountCents: 100, PaymentMethodRef: "pm_ok"}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
