package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrDivisionByZero    = errors.New("content per unit must be greater than zero")
	ErrInvalidDiscount   = errors.New("discount must not be negative")
	ErrNegativeTotal     = errors.New("discount exceeds bill total")
	ErrInvalidContent    = errors.New("content quantity must be greater than zero")
	ErrInvalidTransition = errors.New("bill status transition not allowed")
	ErrBillLocked        = errors.New("bill can no longer be edited")
)

// ItemError ties a validation failure to the line item that caused it.
type ItemError struct {
	ItemID string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %s: %v", e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
