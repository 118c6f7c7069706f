// Package policy decides what a source member may do.
package policy

import (
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// Action is a permission-checked operation inside a source.
type Action string

const (
	SourceView     Action = "source:view"
	SourceManage   Action = "source:manage"
	MemberView     Action = "member:view"
	MemberManage   Action = "member:manage"
	MemberInvite   Action = "member:invite"
	CatalogView    Action = "catalog:view"
	CatalogManage  Action = "catalog:manage"
	BillView       Action = "bill:view"
	BillWrite      Action = "bill:write"
	LedgerView     Action = "ledger:view"
	LedgerWrite    Action = "ledger:write"
	LedgerDelete   Action = "ledger:delete"
	CategoryManage Action = "category:manage"
	CreditManage   Action = "credit:manage"
	ReportView     Action = "report:view"
	PrinterUse     Action = "printer:use"
)

// Actions lists every action in a stable order.
var Actions = []Action{
	SourceView, SourceManage, MemberView, MemberManage, MemberInvite,
	CatalogView, CatalogManage, BillView, BillWrite,
	LedgerView, LedgerWrite, LedgerDelete, CategoryManage,
	CreditManage, ReportView, PrinterUse,
}

var table = map[enum.SourceRole]map[Action]bool{
	enum.SourceRoleController: allow(Actions...),
	enum.SourceRoleAdmin: allow(
		SourceView, MemberView, MemberInvite,
		CatalogView, CatalogManage, BillView, BillWrite,
		LedgerView, LedgerWrite, LedgerDelete, CategoryManage,
		CreditManage, ReportView, PrinterUse,
	),
	enum.SourceRoleViewer: allow(
		SourceView, MemberView, CatalogView, BillView, LedgerView, ReportView,
	),
}

func allow(actions ...Action) map[Action]bool {
	m := make(map[Action]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

// Allowed is the pure (role, action) lookup. Unknown roles get nothing.
func Allowed(role enum.SourceRole, action Action) bool {
	return table[role][action]
}

// Access is a membership's role plus its per-area flags.
type Access struct {
	Role          enum.SourceRole
	IncomeAccess  bool
	ExpenseAccess bool
	BillingAccess bool
}

// AllowedFor applies the role table and then the access flags. Flags only
// narrow write and manage actions; reads follow the role table. Controllers are
// never narrowed by flags.
func AllowedFor(access Access, action Action) bool {
	if !Allowed(access.Role, action) {
		return false
	}
	if access.Role == enum.SourceRoleController {
		return true
	}

	switch action {
	case BillWrite, PrinterUse, CreditManage:
		return access.BillingAccess
	case LedgerWrite, LedgerDelete, CategoryManage:
		return access.IncomeAccess || access.ExpenseAccess
	}
	return true
}

// CanRecord reports whether the member may write entries of the given kind.
func CanRecord(access Access, kind enum.LedgerKind) bool {
	if !AllowedFor(access, LedgerWrite) {
		return false
	}
	if access.Role == enum.SourceRoleController {
		return true
	}
	if kind == enum.LedgerKindIncome {
		return access.IncomeAccess
	}
	return access.ExpenseAccess
}

// FullAccess is the flag set given to controllers and new admins.
func FullAccess(role enum.SourceRole) Access {
	return Access{Role: role, IncomeAccess: true, ExpenseAccess: true, BillingAccess: true}
}
