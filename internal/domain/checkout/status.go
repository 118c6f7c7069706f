package checkout

import (
	"fmt"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// A held bill must be resumed before it can be cancelled.
var transitions = map[enum.BillStatus][]enum.BillStatus{
	enum.BillStatusActive: {
		enum.BillStatusOnHold,
		enum.BillStatusCompleted,
		enum.BillStatusCancelled,
		enum.BillStatusPartiallyPaid,
	},
	enum.BillStatusOnHold:        {enum.BillStatusActive},
	enum.BillStatusPartiallyPaid: {enum.BillStatusCompleted},
}

// CanTransition reports whether a bill may move from one status to another.
func CanTransition(from, to enum.BillStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns ErrInvalidTransition for moves outside the state machine.
func Transition(from, to enum.BillStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// EnsureItemsMutable allows line item, discount and payer edits on active bills only.
func EnsureItemsMutable(status enum.BillStatus) error {
	if status != enum.BillStatusActive {
		return fmt.Errorf("%w: bill is %s", ErrBillLocked, status)
	}
	return nil
}
