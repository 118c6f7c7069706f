package enum

import (
	"database/sql/driver"
	"fmt"
)

// LedgerKind is the direction of a ledger entry
type LedgerKind string

const (
	LedgerKindIncome  LedgerKind = "income"
	LedgerKindExpense LedgerKind = "expense"
)

func (k LedgerKind) IsValid() bool {
	return k == LedgerKindIncome || k == LedgerKindExpense
}

func (k *LedgerKind) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, "ledger kind", func(v string) bool { return LedgerKind(v).IsValid() })
	if err != nil {
		return err
	}
	*k = LedgerKind(v)
	return nil
}

func (k LedgerKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *LedgerKind) Scan(value interface{}) error {
	v, err := scanString(value)
	if err != nil {
		return err
	}
	if !LedgerKind(v).IsValid() {
		return fmt.Errorf("invalid ledger kind %q", v)
	}
	*k = LedgerKind(v)
	return nil
}

// InvitationStatus tracks an invitation through acceptance
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)
