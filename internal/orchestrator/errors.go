package orchestrator

import "errors"

// NotFound class: unknown group, transaction or member. Never retried.
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMemberNotFound      = errors.New("member not found")
)

// InvalidInput class: the request is rejected before any gateway call.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidInput         = errors.New("invalid input")
	ErrMissingPaymentMethod = errors.New("member has no payment method")
	ErrInvalidState         = errors.New("operation not allowed in current transaction state")
)

// ErrConcurrentUpdate means another writer changed the transaction first.
var ErrConcurrentUpdate = errors.New("transaction was modified concurrently")

// IsNotFound reports whether err belongs to the NotFound class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrMemberNotFound)
}

// IsInvalidInput reports whether err belongs to the InvalidInput class.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingPaymentMethod) ||
		errors.Is(err, ErrInvalidState)
}
