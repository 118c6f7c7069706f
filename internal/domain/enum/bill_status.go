package enum

import (
	"database/sql/driver"
	"fmt"
)

// BillStatus is the lifecycle state of a bill (cart)
type BillStatus string

const (
	BillStatusActive        BillStatus = "active"
	BillStatusOnHold        BillStatus = "on-hold"
	BillStatusCompleted     BillStatus = "completed"
	BillStatusCancelled     BillStatus = "cancelled"
	BillStatusPartiallyPaid BillStatus = "partially-paid"
)

func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusActive, BillStatusOnHold, BillStatusCompleted, BillStatusCancelled, BillStatusPartiallyPaid:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusCompleted || s == BillStatusCancelled
}

func (s BillStatus) String() string {
	return string(s)
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, "bill status", func(v string) bool { return BillStatus(v).IsValid() })
	if err != nil {
		return err
	}
	*s = BillStatus(v)
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	v, err := scanString(value)
	if err != nil {
		return err
	}
	if v == "" {
		*s = BillStatusActive
		return nil
	}
	if !BillStatus(v).IsValid() {
		return fmt.Errorf("invalid bill status %q", v)
	}
	*s = BillStatus(v)
	return nil
}

// PaymentStatus classifies an unpaid balance against the payer's credit days
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)
