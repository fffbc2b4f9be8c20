package models

// TransactionStatus is the lifecycle state of a GroupTransaction.
type TransactionStatus string

const (
	StatusAwaitingConfirmations TransactionStatus = "awaiting_confirmations"
	StatusPreauth               TransactionStatus = "preauth"
	StatusApproved              TransactionStatus = "approved"
	StatusDeclined              TransactionStatus = "declined"
	StatusCaptured              TransactionStatus = "captured"
	StatusReleased              TransactionStatus = "released"
)

// MerchantAuthStatus is the single decision the merchant sees.
type MerchantAuthStatus string

const (
	MerchantAuthPending  MerchantAuthStatus = "pending"
	MerchantAuthApproved MerchantAuthStatus = "approved"
	MerchantAuthDeclined MerchantAuthStatus = "declined"
)

// HoldStatus is the state of one member's authorization.
type HoldStatus string

const (
	HoldPending    HoldStatus = "pending"
	HoldAuthorized HoldStatus = "authorized"
	HoldFailed     HoldStatus = "failed"
	HoldCaptured   HoldStatus = "captured"
	HoldReleased   HoldStatus = "released"
)

// MemberConfirmation records one member's consent for a purchase.
// Confirmed and Declined are mutually exclusive; both false means waiting.
type MemberConfirmation struct {
	MemberID   string
	MemberName string
	Confirmed  bool
	Declined   bool

	// ConfirmedAt is the Unix timestamp of the member's answer, 0 while waiting.
	ConfirmedAt int64
}

// Waiting reports whether the member has not answered yet.
func (c MemberConfirmation) Waiting() bool {
	return !c.Confirmed && !c.Declined
}

// MemberHold is one member's share of a purchase, held on their payment method.
type MemberHold struct {
	MemberID    string
	MemberName  string
	AmountCents int64

	// AuthRef is the gateway's authorization reference. Empty until the
	// hold was created successfully.
	AuthRef string

	Status HoldStatus

	// Error carries the processor's error text for failed operations.
	Error string
}

// Releasable reports whether the hold still reserves funds that can be cancelled.
func (h MemberHold) Releasable() bool {
	return h.Status == HoldAuthorized || h.Status == HoldPending
}

// GroupTransaction is one purchase presented to a merchant on behalf of a group.
type GroupTransaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GroupID is the owning group; it partitions transactions in the store.
	GroupID string

	// TotalCents is the amount the merchant asked for.
	TotalCents int64

	// Merchant is the merchant's display name.
	Merchant string

	MerchantAuthStatus MerchantAuthStatus

	// Confirmations holds one entry per group member, fixed at creation.
	Confirmations []MemberConfirmation

	// Holds is empty until authorization runs.
	Holds []MemberHold

	Status TransactionStatus

	// CreatedAt is the Unix timestamp when the transaction was created.
	CreatedAt int64

	// AuthCode is shown to the merchant on approval. Not security sensitive.
	AuthCode string

	// Version increases by one on every successful update and guards
	// compare-and-swap writes.
	Version int64
}

// Clone returns a deep copy so callers can build the next state without
// aliasing the stored value.
func (t GroupTransaction) Clone() GroupTransaction {
	t.Confirmations = append([]MemberConfirmation(nil), t.Confirmations...)
	t.Holds = append([]MemberHold(nil), t.Holds...)
	return t
}

// AnyDeclined reports whether at least one member declined.
func (t *GroupTransaction) AnyDeclined() bool {
	for _, c := range t.Confirmations {
		if c.Declined {
			return true
		}
	}
	return false
}

// AllConfirmed reports whether every member confirmed.
func (t *GroupTransaction) AllConfirmed() bool {
	if len(t.Confirmations) == 0 {
		return false
	}
	for _, c := range t.Confirmations {
		if !c.Confirmed {
			return false
		}
	}
	return true
}

// AllAuthorized reports whether every hold is authorized. A transaction
// without holds is never fully authorized.
func (t *GroupTransaction) AllAuthorized() bool {
	if len(t.Holds) == 0 {
		return false
	}
	for _, h := range t.Holds {
		if h.Status != HoldAuthorized {
			return false
		}
	}
	return true
}

// HeldCents sums the amounts of all holds.
func (t *GroupTransaction) HeldCents() int64 {
	var sum int64
	for _, h := range t.Holds {
		sum += h.AmountCents
	}
	return sum
}
