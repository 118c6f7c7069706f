package request

import (
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// CreateSourceRequest represents a source creation request
type CreateSourceRequest struct {
	Name     string                 `json:"name" binding:"required,min=2,max=255"`
	Currency string                 `json:"currency" binding:"omitempty,len=3"`
	Settings *entity.SourceSettings `json:"settings"`
}

// UpdateSourceRequest represents a source update request
type UpdateSourceRequest struct {
	Name     string                 `json:"name" binding:"omitempty,min=2,max=255"`
	Currency string                 `json:"currency" binding:"omitempty,len=3"`
	Settings *entity.SourceSettings `json:"settings"`
}

// UpdateMemberRoleRequest changes a member's role
type UpdateMemberRoleRequest struct {
	Role enum.SourceRole `json:"role" binding:"required"`
}

// UpdateMemberAccessRequest toggles a member's access flags
type UpdateMemberAccessRequest struct {
	IncomeAccess  *bool `json:"income_access"`
	ExpenseAccess *bool `json:"expense_access"`
	BillingAccess *bool `json:"billing_access"`
}

// InviteRequest invites an email address into the current source
type InviteRequest struct {
	Email string          `json:"email" binding:"required,email"`
	Role  enum.SourceRole `json:"role" binding:"required"`
}

// AcceptInvitationRequest redeems an invitation code
type AcceptInvitationRequest struct {
	Code string `json:"code" binding:"required"`
}
