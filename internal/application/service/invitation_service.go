package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/email"
	"github.com/sangkips/ledgerpos-api/pkg/utils"
)

// InvitationMailer delivers invitation codes
type InvitationMailer interface {
	Enabled() bool
	SendInvitation(inv email.Invitation) error
}

// InvitationService handles inviting users into a source
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	sourceRepo     repository.SourceRepository
	mailer         InvitationMailer
	tx             repository.Transactor
	ttl            time.Duration
	now            func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	sourceRepo repository.SourceRepository,
	mailer InvitationMailer,
	tx repository.Transactor,
	ttl time.Duration,
) *InvitationService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		sourceRepo:     sourceRepo,
		mailer:         mailer,
		tx:             tx,
		ttl:            ttl,
		now:            time.Now,
	}
}

// InviteInput represents the invite input
type InviteInput struct {
	Email        string
	Role         enum.SourceRole
	InviterID    uuid.UUID
	InviterEmail string
	InviterRole  enum.SourceRole
}

// InviteResult carries the plain code. It is only ever returned here.
type InviteResult struct {
	Invitation *entity.Invitation `json:"invitation"`
	Code       string             `json:"code"`
	Emailed    bool               `json:"emailed"`
}

// Invite creates a pending invitation and mails its code
func (s *InvitationService) Invite(ctx context.Context, input *InviteInput) (*InviteResult, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}

	addr := strings.ToLower(strings.TrimSpace(input.Email))
	if addr == "" || !strings.Contains(addr, "@") {
		return nil, apperror.NewBadRequestError("A valid email is required")
	}
	if !input.Role.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid role")
	}
	if input.Role == enum.SourceRoleController && input.InviterRole != enum.SourceRoleController {
		return nil, apperror.NewForbiddenError("Only controllers can invite controllers")
	}

	source, err := s.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.NewNotFoundError("Source")
	}

	member, err := s.sourceRepo.FindMemberByEmail(ctx, sourceID, addr)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, apperror.NewConflictError("User is already a member of this source")
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	inv := &entity.Invitation{
		SourceID:  sourceID,
		Email:     addr,
		Role:      input.Role,
		CodeHash:  string(hash),
		Status:    enum.InvitationPending,
		InvitedBy: input.InviterID,
		ExpiresAt: now.Add(s.ttl),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.invitationRepo.FindPending(ctx, addr)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsExpired(now) {
				return apperror.NewConflictError("An invitation is already pending for this email")
			}
			existing.Status = enum.InvitationExpired
			if err := s.invitationRepo.Update(ctx, existing); err != nil {
				return err
			}
		}
		return s.invitationRepo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	result := &InviteResult{Invitation: inv, Code: code}
	if s.mailer != nil && s.mailer.Enabled() {
		err := s.mailer.SendInvitation(email.Invitation{
			To:         addr,
			SourceName: source.Name,
			Role:       string(input.Role),
			Code:       code,
			InvitedBy:  input.InviterEmail,
			ExpiresAt:  inv.ExpiresAt,
		})
		if err != nil {
			// the code is still handed back so the inviter can share it another way
			log.Printf("Invitation email to %s failed: %v", addr, err)
		} else {
			result.Emailed = true
		}
	}

	return result, nil
}

// ListInvitations lists invitations of the scoped source
func (s *InvitationService) ListInvitations(ctx context.Context, status *enum.InvitationStatus) ([]entity.Invitation, error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	return s.invitationRepo.List(ctx, status)
}

// Revoke cancels a pending invitation
func (s *InvitationService) Revoke(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invitationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperror.NewNotFoundError("Invitation")
	}
	if inv.Status != enum.InvitationPending {
		return apperror.NewConflictError("Only pending invitations can be revoked")
	}

	inv.Status = enum.InvitationRevoked
	return s.invitationRepo.Update(ctx, inv)
}

var errCodeMismatch = errors.New("invitation code does not match")

// Accept turns the caller's pending invitation into a membership. The caller's
// email must match the invited address.
func (s *InvitationService) Accept(ctx context.Context, userID uuid.UUID, userEmail, code string) (*entity.SourceMember, error) {
	addr := strings.ToLower(strings.TrimSpace(userEmail))
	if addr == "" || code == "" {
		return nil, apperror.NewBadRequestError("Invitation code is required")
	}

	pending, err := s.invitationRepo.ListPendingByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invitation
	for i := range pending {
		if bcrypt.CompareHashAndPassword([]byte(pending[i].CodeHash), []byte(code)) == nil {
			inv = &pending[i]
			break
		}
	}
	if inv == nil {
		return nil, apperror.Wrap(http.StatusNotFound, errCodeMismatch)
	}

	now := s.now()
	if inv.IsExpired(now) {
		inv.Status = enum.InvitationExpired
		inv.Source = nil
		if err := s.invitationRepo.Update(ctx, inv); err != nil {
			return nil, err
		}
		return nil, apperror.NewAppError(http.StatusGone, "Invitation has expired")
	}

	member := &entity.SourceMember{
		SourceID: inv.SourceID,
		UserID:   userID,
		Email:    addr,
		Role:     inv.Role,
	}
	if inv.Role != enum.SourceRoleViewer {
		member.SetAccess(policy.FullAccess(inv.Role))
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.sourceRepo.GetMember(ctx, inv.SourceID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflictError("You are already a member of this source")
		}
		if err := s.sourceRepo.AddMember(ctx, member); err != nil {
			return domainError(err)
		}

		inv.Status = enum.InvitationAccepted
		inv.AcceptedAt = &now
		inv.Source = nil
		return s.invitationRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}
