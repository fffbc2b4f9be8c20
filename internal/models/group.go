package models

// Group is a set of members sharing one card.
// Members are ordered; the first member absorbs any split remainder.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Members is the ordered list of people in this group.
	Members []GroupMember

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupMember is one person in a group.
type GroupMember struct {
	// ID is unique within the group.
	ID string

	// Name is the display name shown to the merchant-side caller and other members.
	Name string

	// Email is optional contact information.
	Email string

	// PaymentMethodRef is an opaque token resolvable by the payment gateway
	// (e.g., a Stripe payment method ID). Required before the member can
	// take part in an authorization.
	PaymentMethodRef string

	// Linked reports whether the payment method has been linked and verified.
	Linked bool
}

// CanAuthorize reports whether the member has a payment method to hold funds against.
func (m GroupMember) CanAuthorize() bool {
	return m.PaymentMethodRef != ""
}

// Member returns the member with the given ID.
func (g *Group) Member(memberID string) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return GroupMember{}, false
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	g.Members = append([]GroupMember(nil), g.Members...)
	return g
}
