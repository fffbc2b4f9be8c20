package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrNoMembers        = errors.New("must have at least one member")
	ErrAmountTooSmall   = errors.New("total must cover at least one cent per member")
	ErrNonPositiveTotal = errors.New("total must be positive")
)

// SplitEvenly divides totalCents across memberCount members.
// Every member gets floor(total / count); the whole remainder goes to the
// first member, so the shares always sum to totalCents exactly.
func SplitEvenly(totalCents int64, memberCount int) ([]int64, error) {
	if memberCount <= 0 {
		return nil, ErrNoMembers
	}
	if totalCents <= 0 {
		return nil, ErrNonPositiveTotal
	}
	if totalCents < int64(memberCount) {
		return nil, fmt.Errorf("%w: %d cents across %d members", ErrAmountTooSmall, totalCents, memberCount)
	}

	share := totalCents / int64(memberCount)
	remainder := totalCents - share*int64(memberCount)

	shares := make([]int64, memberCount)
	for i := range shares {
		shares[i] = share
	}
	shares[0] += remainder

	return shares, nil
}
