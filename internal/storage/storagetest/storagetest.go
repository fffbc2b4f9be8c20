// Package storagetest holds a conformance suite run against every
// storage.Store backend.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

// Run exercises the Store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("CreateGroup assigns IDs and keeps member order", func(t *testing.T) {
		store := newStore(t)
		group := sampleGroup()
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" || group.CreatedAt == 0 {
			t.Fatalf("expected ID and CreatedAt to be set, got %+v", group)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 3 {
			t.Fatalf("members: expected 3, got %d", len(got.Members))
		}
		for i, name := range []string{"Alice", "Bob", "Charlie"} {
			if got.Members[i].Name != name {
				t.Errorf("member[%d]: expected %s, got %s", i, name, got.Members[i].Name)
			}
			if got.Members[i].ID == "" {
				t.Errorf("member[%d]: expected generated ID", i)
			}
		}
		if got.Members[0].PaymentMethodRef != "pm_alice" || !got.Members[0].Linked {
			t.Errorf("member[0] payment method not persisted: %+v", got.Members[0])
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("transaction round trip", func(t *testing.T) {
		store := newStore(t)
		group := mustCreateGroup(t, store)
		txn := sampleTransaction(group)
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if txn.ID == "" || txn.Version != 1 {
			t.Fatalf("expected ID and version 1, got id=%q version=%d", txn.ID, txn.Version)
		}

		got, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		assertSameTransaction(t, txn, got)

		again, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("second GetTransaction failed: %v", err)
		}
		assertSameTransaction(t, got, again)

		scoped, err := store.GetGroupTransaction(ctx, group.ID, txn.ID)
		if err != nil {
			t.Fatalf("GetGroupTransaction failed: %v", err)
		}
		assertSameTransaction(t, txn, scoped)

		if _, err := store.GetGroupTransaction(ctx, "other-group", txn.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for wrong group, got %v", err)
		}
		if _, err := store.GetTransaction(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown id, got %v", err)
		}
	})

	t.Run("returned values do not alias stored state", func(t *testing.T) {
		store := newStore(t)
		group := mustCreateGroup(t, store)
		txn := sampleTransaction(group)
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		got, _ := store.GetTransaction(ctx, txn.ID)
		got.Confirmations[0].Confirmed = true
		got.Status = models.StatusDeclined

		fresh, _ := store.GetTransaction(ctx, txn.ID)
		if fresh.Confirmations[0].Confirmed || fresh.Status != models.StatusAwaitingConfirmations {
			t.Error("mutating a returned transaction changed the store")
		}
	})

	t.Run("UpdateTransaction compare-and-swap", func(t *testing.T) {
		store := newStore(t)
		group := mustCreateGroup(t, store)
		txn := sampleTransaction(group)
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		stale, _ := store.GetTransaction(ctx, txn.ID)

		next, _ := store.GetTransaction(ctx, txn.ID)
		next.Status = models.StatusApproved
		next.MerchantAuthStatus = models.MerchantAuthApproved
		next.AuthCode = "AUTH123456"
		next.Holds = []models.MemberHold{
			{MemberID: group.Members[0].ID, MemberName: "Alice", AmountCents: 601, AuthRef: "pi_1", Status: models.HoldAuthorized},
			{MemberID: group.Members[1].ID, MemberName: "Bob", AmountCents: 600, AuthRef: "pi_2", Status: models.HoldAuthorized},
			{MemberID: group.Members[2].ID, MemberName: "Charlie", AmountCents: 600, Status: models.HoldFailed, Error: "card declined"},
		}
		if err := store.UpdateTransaction(ctx, next); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}
		if next.Version != 2 {
			t.Errorf("version: expected 2, got %d", next.Version)
		}

		got, _ := store.GetTransaction(ctx, txn.ID)
		assertSameTransaction(t, next, got)

		stale.Status = models.StatusDeclined
		err := store.UpdateTransaction(ctx, stale)
		if !errors.Is(err, storage.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
		got, _ = store.GetTransaction(ctx, txn.ID)
		if got.Status != models.StatusApproved {
			t.Errorf("conflicting write must not persist, status = %s", got.Status)
		}

		missing := sampleTransaction(group)
		missing.ID = "missing"
		missing.Version = 1
		if err := store.UpdateTransaction(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("concurrent updates from one version admit one winner", func(t *testing.T) {
		store := newStore(t)
		group := mustCreateGroup(t, store)
		txn := sampleTransaction(group)
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				next := txn.Clone()
				next.Status = models.StatusPreauth
				if err := store.UpdateTransaction(ctx, &next); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				} else if !errors.Is(err, storage.ErrVersionConflict) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		if succeeded != 1 {
			t.Errorf("expected exactly one successful writer, got %d", succeeded)
		}
	})

	t.Run("reads never mix versions under concurrent writes", func(t *testing.T) {
		store := newStore(t)
		group := mustCreateGroup(t, store)
		txn := sampleTransaction(group)
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		// Each write stamps the first confirmation with the version it produces.
		const updates = 200
		done := make(chan struct{})
		go func() {
			defer close(done)
			current := txn.Clone()
			for i := 0; i < updates; i++ {
				next := current.Clone()
				next.Confirmations[0].ConfirmedAt = next.Version + 1
				if err := store.UpdateTransaction(ctx, &next); err != nil {
					t.Errorf("UpdateTransaction failed: %v", err)
					return
				}
				current = next
			}
		}()

		torn := func(got *models.GroupTransaction) bool {
			want := got.Version
			if want == 1 {
				want = 0
			}
			if got.Confirmations[0].ConfirmedAt != want {
				t.Errorf("torn read: version %d with confirmation stamped %d",
					got.Version, got.Confirmations[0].ConfirmedAt)
				return true
			}
			return false
		}
	read:
		for {
			select {
			case <-done:
				break read
			default:
			}
			got, err := store.GetTransaction(ctx, txn.ID)
			if err != nil {
				t.Errorf("GetTransaction failed: %v", err)
				break
			}
			if torn(got) {
				break
			}
			list, err := store.ListTransactionsByGroup(ctx, group.ID)
			if err != nil {
				t.Errorf("ListTransactionsByGroup failed: %v", err)
				break
			}
			if len(list) != 1 || torn(list[0]) {
				break
			}
		}
		<-done
	})

	t.Run("ListTransactionsByGroup is latest first", func(t *testing.T) {
		store := newStore(t)
		group := mustCreateGroup(t, store)
		var ids []string
		for i := 0; i < 3; i++ {
			txn := sampleTransaction(group)
			txn.CreatedAt = int64(1000 + i)
			if err := store.CreateTransaction(ctx, txn); err != nil {
				t.Fatalf("CreateTransaction failed: %v", err)
			}
			ids = append(ids, txn.ID)
		}

		list, err := store.ListTransactionsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListTransactionsByGroup failed: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(list))
		}
		for i, want := range []string{ids[2], ids[1], ids[0]} {
			if list[i].ID != want {
				t.Errorf("list[%d]: expected %s, got %s", i, want, list[i].ID)
			}
			if len(list[i].Confirmations) != 3 {
				t.Errorf("list[%d]: expected confirmations to be loaded", i)
			}
		}

		empty, err := store.ListTransactionsByGroup(ctx, "no-such-group")
		if err != nil {
			t.Fatalf("ListTransactionsByGroup failed: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("expected no transactions, got %d", len(empty))
		}
	})

	t.Run("terminals", func(t *testing.T) {
		store := newStore(t)
		term := &models.Terminal{Name: "Register 1", SecretHash: "hash"}
		if err := store.CreateTerminal(ctx, term); err != nil {
			t.Fatalf("CreateTerminal failed: %v", err)
		}
		got, err := store.GetTerminal(ctx, term.ID)
		if err != nil {
			t.Fatalf("GetTerminal failed: %v", err)
		}
		if got.Name != "Register 1" || got.SecretHash != "hash" {
			t.Errorf("unexpected terminal: %+v", got)
		}
		if _, err := store.GetTerminal(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func sampleGroup() *models.Group {
	return &models.Group{
		Name: "Roommates",
		Members: []models.GroupMember{
			{Name: "Alice", PaymentMethodRef: "pm_alice", Linked: true},
			{Name: "Bob", PaymentMethodRef: "pm_bob", Linked: true},
			{Name: "Charlie", PaymentMethodRef: "pm_charlie", Linked: true},
		},
	}
}

func mustCreateGroup(t *testing.T, store storage.Store) *models.Group {
	t.Helper()
	group := sampleGroup()
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func sampleTransaction(group *models.Group) *models.GroupTransaction {
	txn := &models.GroupTransaction{
		GroupID:            group.ID,
		TotalCents:         1801,
		Merchant:           "Corner Cafe",
		MerchantAuthStatus: models.MerchantAuthPending,
		Status:             models.StatusAwaitingConfirmations,
	}
	for _, m := range group.Members {
		txn.Confirmations = append(txn.Confirmations, models.MemberConfirmation{
			MemberID:   m.ID,
			MemberName: m.Name,
		})
	}
	return txn
}

func assertSameTransaction(t *testing.T, want, got *models.GroupTransaction) {
	t.Helper()
	if got.ID != want.ID || got.GroupID != want.GroupID || got.TotalCents != want.TotalCents ||
		got.Merchant != want.Merchant || got.Status != want.Status ||
		got.MerchantAuthStatus != want.MerchantAuthStatus || got.AuthCode != want.AuthCode ||
		got.Version != want.Version {
		t.Fatalf("transaction mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	if len(got.Confirmations) != len(want.Confirmations) {
		t.Fatalf("confirmations: expected %d, got %d", len(want.Confirmations), len(got.Confirmations))
	}
	for i := range want.Confirmations {
		if got.Confirmations[i] != want.Confirmations[i] {
			t.Errorf("confirmation[%d]: want %+v, got %+v", i, want.Confirmations[i], got.Confirmations[i])
		}
	}
	if len(got.Holds) != len(want.Holds) {
		t.Fatalf("holds: expected %d, got %d", len(want.Holds), len(got.Holds))
	}
	for i := range want.Holds {
		if got.Holds[i] != want.Holds[i] {
			t.Errorf("hold[%d]: want %+v, got %+v", i, want.Holds[i], got.Holds[i])
		}
	}
}
