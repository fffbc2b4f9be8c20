// Package models defines the core domain models for GroupCard.
//
// # Models
//
//   - Group: a set of people sharing one merchant-visible card
//   - GroupMember: one person in a group, with a linked payment method
//   - GroupTransaction: one purchase presented to a merchant, split across members
//   - MemberConfirmation: a member's consent (or refusal) for one purchase
//   - MemberHold: one manual-capture authorization against a member's payment method
//   - Terminal: a merchant terminal allowed to propose and settle purchases
//
// # Lifecycle
//
// A GroupTransaction moves through the states below. Terminal states accept
// no further transitions.
//
//	awaiting_confirmations -> declined | preauth
//	preauth                -> approved | declined
//	approved               -> captured | released
//
// A purchase proposed with every confirmation already collected skips
// awaiting_confirmations and lands directly in approved or declined.
//
// # Design Principles
//
// 1. **Value semantics**: stores hand out copies; callers compute the next
// state as a new value and write it back in one update
// 2. **IDs, not pointers**: transactions reference groups and members by ID
// 3. **Integer cents**: all amounts are int64 cents, never floats
package models
