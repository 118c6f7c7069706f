package checkout

import (
	"time"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// DefaultCreditDays applies when a payer has no credit setting in a source.
const DefaultCreditDays = 1

// DueDate is billDate plus creditDays calendar days.
func DueDate(billDate time.Time, creditDays int) time.Time {
	return billDate.AddDate(0, 0, creditDays)
}

// ResolveStatus is overdue once now is strictly after the due date.
func ResolveStatus(billDate time.Time, creditDays int, now time.Time) enum.PaymentStatus {
	if now.After(DueDate(billDate, creditDays)) {
		return enum.PaymentStatusOverdue
	}
	return enum.PaymentStatusPending
}

// EffectiveCreditDays falls back to DefaultCreditDays for a missing or non-positive setting.
func EffectiveCreditDays(creditDays *int) int {
	if creditDays == nil || *creditDays < 1 {
		return DefaultCreditDays
	}
	return *creditDays
}

// ResolveForPayer is ResolveStatus for a bill that may have no payer. Without a
// payer no due date applies and the bill stays pending.
func ResolveForPayer(billDate time.Time, hasPayer bool, creditDays *int, now time.Time) enum.PaymentStatus {
	if !hasPayer {
		return enum.PaymentStatusPending
	}
	return ResolveStatus(billDate, EffectiveCreditDays(creditDays), now)
}
