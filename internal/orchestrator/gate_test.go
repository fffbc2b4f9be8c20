package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mmynk/groupcard/internal/gateway"
	"github.com/mmynk/groupcard/internal/models"
)

func TestProposePurchaseValidation(t *testing.T) {
	env := setupOrchestrator(t)
	group := env.createGroup(t, "pm_a", "pm_b", "pm_c")

	tests := []struct {
		name    string
		req     PurchaseRequest
		wantErr error
	}{
		{"zero total", PurchaseRequest{GroupID: group.ID, TotalCents: 0, Merchant: "Cafe"}, ErrInvalidAmount},
		{"negative total", PurchaseRequest{GroupID: group.ID, TotalCents: -100, Merchant: "Cafe"}, ErrInvalidAmount},
		{"total below member count", PurchaseRequest{GroupID: group.ID, TotalCents: 2, Merchant: "Cafe"}, ErrInvalidAmount},
		{"empty merchant", PurchaseRequest{GroupID: group.ID, TotalCents: 100, Merchant: "  "}, ErrInvalidInput},
		{"unknown group", PurchaseRequest{GroupID: "missing", TotalCents: 100, Merchant: "Cafe"}, ErrGroupNotFound},
		{"confirmation for stranger", PurchaseRequest{
			GroupID: group.ID, TotalCents: 100, Merchant: "Cafe",
			Confirmations: []models.MemberConfirmation{
				{MemberID: "m1", Confirmed: true},
				{MemberID: "m2", Confirmed: true},
				{MemberID: "stranger", Confirmed: true},
			},
		}, ErrInvalidInput},
		{"missing confirmation", PurchaseRequest{
			GroupID: group.ID, TotalCents: 100, Merchant: "Cafe",
			Confirmations: []models.MemberConfirmation{
				{MemberID: "m1", Confirmed: true},
			},
		}, ErrInvalidInput},
		{"duplicate confirmation", PurchaseRequest{
			GroupID: group.ID, TotalCents: 100, Merchant: "Cafe",
			Confirmations: []models.MemberConfirmation{
				{MemberID: "m1", Confirmed: true},
				{MemberID: "m1", Confirmed: true},
				{MemberID: "m2", Confirmed: true},
			},
		}, ErrInvalidInput},
		{"confirmed and declined", PurchaseRequest{
			GroupID: group.ID, TotalCents: 100, Merchant: "Cafe",
			Confirmations: []models.MemberConfirmation{
				{MemberID: "m1", Confirmed: true, Declined: true},
				{MemberID: "m2", Confirmed: true},
				{MemberID: "m3", Confirmed: true},
			},
		}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := env.orch.ProposePurchase(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if txn != nil {
				t.Errorf("expected no transaction, got %+v", txn)
			}
		})
	}

	if calls := env.gw.Calls(gateway.OpCreateHold); calls != 0 {
		t.Errorf("expected no gateway calls for rejected requests, got %d", calls)
	}
}

func TestProposePurchaseMissingPaymentMethod(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()

	// Written directly to the store: CreateGroup refuses members without a payment method.
	group := &models.Group{
		Name: "Legacy",
		Members: []models.GroupMember{
			{ID: "m1", Name: "Alice", PaymentMethodRef: "pm_alice"},
			{ID: "m2", Name: "Bob"},
		},
	}
	if err := env.store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err := env.orch.ProposePurchase(ctx, PurchaseRequest{
		GroupID: group.ID, TotalCents: 1000, Merchant: "Cafe", BypassConfirmations: true,
	})
	if !errors.Is(err, ErrMissingPaymentMethod) {
		t.Fatalf("expected ErrMissingPaymentMethod, got %v", err)
	}
	if calls := env.gw.Calls(gateway.OpCreateHold); calls != 0 {
		t.Errorf("expected no gateway calls, got %d", calls)
	}
}

func TestProposePurchaseAwaitingConfirmations(t *testing.T) {
	env := setupOrchestrator(t)
	group := env.createGroup(t, "pm_a", "pm_b", "pm_c")

	txn, err := env.orch.ProposePurchase(context.Background(), PurchaseRequest{
		GroupID: group.ID, TotalCents: 1800, Merchant: "Cafe",
	})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}

	if txn.Status != models.StatusAwaitingConfirmations {
		t.Errorf("expected awaiting_confirmations, got %s", txn.Status)
	}
	if txn.MerchantAuthStatus != models.MerchantAuthPending {
		t.Errorf("expected pending merchant auth, got %s", txn.MerchantAuthStatus)
	}
	if len(txn.Holds) != 0 {
		t.Errorf("expected no holds, got %d", len(txn.Holds))
	}
	if len(txn.Confirmations) != 3 {
		t.Fatalf("expected 3 confirmations, got %d", len(txn.Confirmations))
	}
	for i, c := range txn.Confirmations {
		if c.MemberID != group.Members[i].ID {
			t.Errorf("confirmation %d: expected member %s, got %s", i, group.Members[i].ID, c.MemberID)
		}
		if !c.Waiting() {
			t.Errorf("expected %s to be waiting", c.MemberID)
		}
	}
	if txn.Version != 1 {
		t.Errorf("expected version 1, got %d", txn.Version)
	}
}

// A member declines before authorization.
func TestProposePurchaseDeclinedConfirmation(t *testing.T) {
	tests := []struct {
		name   string
		bypass bool
		others models.MemberConfirmation
	}{
		{"others confirmed", false, models.MemberConfirmation{Confirmed: true}},
		{"others waiting", false, models.MemberConfirmation{}},
		{"bypass requested", true, models.MemberConfirmation{Confirmed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupOrchestrator(t)
			group := env.createGroup(t, "pm_a", "pm_b", "pm_c")

			confirmations := make([]models.MemberConfirmation, len(group.Members))
			for i, m := range group.Members {
				confirmations[i] = tt.others
				confirmations[i].MemberID = m.ID
			}
			confirmations[1] = models.MemberConfirmation{MemberID: group.Members[1].ID, Declined: true}

			txn, err := env.orch.ProposePurchase(context.Background(), PurchaseRequest{
				GroupID:             group.ID,
				TotalCents:          1800,
				Merchant:            "Cafe",
				Confirmations:       confirmations,
				BypassConfirmations: tt.bypass,
			})
			if err != nil {
				t.Fatalf("ProposePurchase failed: %v", err)
			}

			if txn.Status != models.StatusDeclined {
				t.Errorf("expected declined, got %s", txn.Status)
			}
			if txn.MerchantAuthStatus != models.MerchantAuthDeclined {
				t.Errorf("expected declined merchant auth, got %s", txn.MerchantAuthStatus)
			}
			if len(txn.Holds) != 0 {
				t.Errorf("expected no holds, got %d", len(txn.Holds))
			}
			if calls := env.gw.Calls(gateway.OpCreateHold); calls != 0 {
				t.Errorf("expected no gateway calls, got %d", calls)
			}
			if txn.Confirmations[1].ConfirmedAt == 0 {
				t.Error("expected answer timestamp on the declining member")
			}
		})
	}
}

func TestProposePurchaseAllConfirmedRunsAuthorization(t *testing.T) {
	env := setupOrchestrator(t)
	group := env.createGroup(t, "pm_a", "pm_b")

	txn, err := env.orch.ProposePurchase(context.Background(), PurchaseRequest{
		GroupID:    group.ID,
		TotalCents: 999,
		Merchant:   "Cafe",
		Confirmations: []models.MemberConfirmation{
			{MemberID: "m2", Confirmed: true},
			{MemberID: "m1", Confirmed: true},
		},
	})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}

	if txn.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %s", txn.Status)
	}
	if len(txn.Holds) != len(group.Members) {
		t.Fatalf("expected %d holds, got %d", len(group.Members), len(txn.Holds))
	}
	// Confirmations are normalized to group order.
	if txn.Confirmations[0].MemberID != "m1" || txn.Confirmations[0].MemberName != "Member 1" {
		t.Errorf("unexpected first confirmation: %+v", txn.Confirmations[0])
	}
}

func TestRecordConfirmationFlow(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()
	group := env.createGroup(t, "pm_a", "pm_b", "pm_c")

	txn, err := env.orch.ProposePurchase(ctx, PurchaseRequest{GroupID: group.ID, TotalCents: 1801, Merchant: "Cafe"})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}

	for i, m := range group.Members {
		txn, err = env.orch.RecordConfirmation(ctx, txn.ID, m.ID, true)
		if err != nil {
			t.Fatalf("RecordConfirmation(%s) failed: %v", m.ID, err)
		}
		want := models.StatusAwaitingConfirmations
		if i == len(group.Members)-1 {
			want = models.StatusPreauth
		}
		if txn.Status != want {
			t.Errorf("after %s confirmed: expected %s, got %s", m.ID, want, txn.Status)
		}
	}
	if env.gw.Calls(gateway.OpCreateHold) != 0 {
		t.Error("confirmations must not place holds")
	}

	txn, err = env.orch.AuthorizeTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("AuthorizeTransaction failed: %v", err)
	}
	if txn.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %s", txn.Status)
	}
	want := []int64{601, 600, 600}
	for i, h := range txn.Holds {
		if h.AmountCents != want[i] {
			t.Errorf("hold %d: expected %d cents, got %d", i, want[i], h.AmountCents)
		}
	}
}

func TestRecordConfirmationDecline(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()
	group := env.createGroup(t, "pm_a", "pm_b", "pm_c")

	txn, err := env.orch.ProposePurchase(ctx, PurchaseRequest{GroupID: group.ID, TotalCents: 1800, Merchant: "Cafe"})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}
	if _, err := env.orch.RecordConfirmation(ctx, txn.ID, "m1", true); err != nil {
		t.Fatalf("RecordConfirmation failed: %v", err)
	}

	txn, err = env.orch.RecordConfirmation(ctx, txn.ID, "m2", false)
	if err != nil {
		t.Fatalf("RecordConfirmation failed: %v", err)
	}
	if txn.Status != models.StatusDeclined || txn.MerchantAuthStatus != models.MerchantAuthDeclined {
		t.Errorf("expected declined, got %s/%s", txn.Status, txn.MerchantAuthStatus)
	}

	// The remaining member can no longer answer.
	if _, err := env.orch.RecordConfirmation(ctx, txn.ID, "m3", true); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if _, err := env.orch.AuthorizeTransaction(ctx, txn.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestRecordConfirmationRepeatedAnswer(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()
	group := env.createGroup(t, "pm_a", "pm_b")

	txn, err := env.orch.ProposePurchase(ctx, PurchaseRequest{GroupID: group.ID, TotalCents: 1000, Merchant: "Cafe"})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}

	first, err := env.orch.RecordConfirmation(ctx, txn.ID, "m1", true)
	if err != nil {
		t.Fatalf("RecordConfirmation failed: %v", err)
	}
	again, err := env.orch.RecordConfirmation(ctx, txn.ID, "m1", true)
	if err != nil {
		t.Fatalf("repeated RecordConfirmation failed: %v", err)
	}
	if again.Version != first.Version {
		t.Errorf("repeated answer should not write: version %d -> %d", first.Version, again.Version)
	}

	if _, err := env.orch.RecordConfirmation(ctx, txn.ID, "m1", false); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for changed answer, got %v", err)
	}
}

func TestRecordConfirmationNotFound(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()
	group := env.createGroup(t, "pm_a")

	txn, err := env.orch.ProposePurchase(ctx, PurchaseRequest{GroupID: group.ID, TotalCents: 100, Merchant: "Cafe"})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}

	if _, err := env.orch.RecordConfirmation(ctx, "missing", "m1", true); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
	if _, err := env.orch.RecordConfirmation(ctx, txn.ID, "stranger", true); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestRecordConfirmationConcurrent(t *testing.T) {
	env := setupOrchestrator(t)
	ctx := context.Background()

	refs := make([]string, 10)
	for i := range refs {
		refs[i] = fmt.Sprintf("pm_%d", i)
	}
	group := env.createGroup(t, refs...)

	txn, err := env.orch.ProposePurchase(ctx, PurchaseRequest{GroupID: group.ID, TotalCents: 5000, Merchant: "Cafe"})
	if err != nil {
		t.Fatalf("ProposePurchase failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(group.Members))
	for _, m := range group.Members {
		wg.Add(1)
		go func(memberID string) {
			defer wg.Done()
			if _, err := env.orch.RecordConfirmation(ctx, txn.ID, memberID, true); err != nil {
				errs <- err
			}
		}(m.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("RecordConfirmation failed: %v", err)
	}

	final, err := env.orch.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if final.Status != models.StatusPreauth {
		t.Errorf("expected preauth, got %s", final.Status)
	}
	if !final.AllConfirmed() {
		t.Error("expected every member to be confirmed")
	}
	if final.Version != int64(1+len(group.Members)) {
		t.Errorf("expected version %d, got %d", 1+len(group.Members), final.Version)
	}
	if n := env.orch.locks.size(); n != 0 {
		t.Errorf("expected lock table to be empty, got %d entries", n)
	}
}
