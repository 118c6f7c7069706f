package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/middleware"
)

// SourceHandler handles sources, their members and invitations
type SourceHandler struct {
	sourceService     *service.SourceService
	invitationService *service.InvitationService
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(sourceService *service.SourceService, invitationService *service.InvitationService) *SourceHandler {
	return &SourceHandler{sourceService: sourceService, invitationService: invitationService}
}

// CreateSource creates a source owned by the caller
func (h *SourceHandler) CreateSource(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateSourceRequest
	if !bindJSON(c, &req) {
		return
	}

	source, err := h.sourceService.CreateSource(c.Request.Context(), &service.CreateSourceInput{
		Name:     req.Name,
		Currency: req.Currency,
		OwnerID:  userID,
		Email:    GetUserEmail(c),
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Source created successfully", source)
}

// ListSources returns the sources the caller belongs to with their role in each
func (h *SourceHandler) ListSources(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sources, err := h.sourceService.ListMySources(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sources retrieved successfully", sources)
}

// GetCurrentSource returns the source selected by X-Source-ID
func (h *SourceHandler) GetCurrentSource(c *gin.Context) {
	source, err := h.sourceService.GetSource(c.Request.Context(), middleware.GetSourceID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Source retrieved successfully", gin.H{
		"source": source,
		"member": middleware.GetMember(c),
	})
}

// UpdateCurrentSource updates the current source's name and settings
func (h *SourceHandler) UpdateCurrentSource(c *gin.Context) {
	var req request.UpdateSourceRequest
	if !bindJSON(c, &req) {
		return
	}

	source, err := h.sourceService.UpdateSource(c.Request.Context(), &service.UpdateSourceInput{
		ID:       middleware.GetSourceID(c),
		Name:     req.Name,
		Currency: req.Currency,
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Source updated successfully", source)
}

// ListMembers returns all members of the current source
func (h *SourceHandler) ListMembers(c *gin.Context) {
	members, err := h.sourceService.ListMembers(c.Request.Context(), middleware.GetSourceID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Members retrieved successfully", members)
}

// UpdateMemberRole changes a member's role
func (h *SourceHandler) UpdateMemberRole(c *gin.Context) {
	memberID, ok := paramUUID(c, "userId", "user")
	if !ok {
		return
	}

	var req request.UpdateMemberRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.sourceService.UpdateMemberRole(c.Request.Context(), middleware.GetSourceID(c), memberID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member role updated successfully", member)
}

// UpdateMemberAccess toggles a member's income, expense and billing flags
func (h *SourceHandler) UpdateMemberAccess(c *gin.Context) {
	memberID, ok := paramUUID(c, "userId", "user")
	if !ok {
		return
	}

	var req request.UpdateMemberAccessRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.sourceService.UpdateMemberAccess(c.Request.Context(), middleware.GetSourceID(c), memberID, &service.UpdateMemberAccessInput{
		IncomeAccess:  req.IncomeAccess,
		ExpenseAccess: req.ExpenseAccess,
		BillingAccess: req.BillingAccess,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member access updated successfully", member)
}

// RemoveMember removes a member from the current source
func (h *SourceHandler) RemoveMember(c *gin.Context) {
	memberID, ok := paramUUID(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.sourceService.RemoveMember(c.Request.Context(), middleware.GetSourceID(c), memberID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Invite creates an invitation and emails its code when mail is configured
func (h *SourceHandler) Invite(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.InviteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.invitationService.Invite(c.Request.Context(), &service.InviteInput{
		Email:        req.Email,
		Role:         req.Role,
		InviterID:    userID,
		InviterEmail: GetUserEmail(c),
		InviterRole:  GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invitation created successfully", result)
}

// ListInvitations lists invitations of the current source, optionally by status
func (h *SourceHandler) ListInvitations(c *gin.Context) {
	var status *enum.InvitationStatus
	if raw := c.Query("status"); raw != "" {
		st := enum.InvitationStatus(raw)
		status = &st
	}

	invitations, err := h.invitationService.ListInvitations(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invitations retrieved successfully", invitations)
}

// RevokeInvitation revokes a pending invitation
func (h *SourceHandler) RevokeInvitation(c *gin.Context) {
	id, ok := paramUUID(c, "id", "invitation")
	if !ok {
		return
	}

	if err := h.invitationService.Revoke(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AcceptInvitation redeems a code for the caller. No source header is needed.
func (h *SourceHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.AcceptInvitationRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.invitationService.Accept(c.Request.Context(), userID, GetUserEmail(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invitation accepted successfully", member)
}
