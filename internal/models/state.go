package models

import "fmt"

var transitions = map[TransactionStatus][]TransactionStatus{
	StatusAwaitingConfirmations: {StatusPreauth, StatusDeclined},
	StatusPreauth:               {StatusApproved, StatusDeclined},
	StatusApproved:              {StatusCaptured, StatusReleased},
}

// Terminal reports whether no further transition is defined from s.
func (s TransactionStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the transaction to the given status, or returns an error
// if the lifecycle does not allow it.
func (t *GroupTransaction) Transition(to TransactionStatus) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("transaction %s: cannot move from %s to %s", t.ID, t.Status, to)
	}
	t.Status = to
	return nil
}
