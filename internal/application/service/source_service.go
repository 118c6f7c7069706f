package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/utils"
)

// SourceService handles sources and their memberships
type SourceService struct {
	sourceRepo         repository.SourceRepository
	ledgerCategoryRepo repository.LedgerCategoryRepository
	tx                 repository.Transactor
}

// NewSourceService creates a new source service
func NewSourceService(
	sourceRepo repository.SourceRepository,
	ledgerCategoryRepo repository.LedgerCategoryRepository,
	tx repository.Transactor,
) *SourceService {
	return &SourceService{
		sourceRepo:         sourceRepo,
		ledgerCategoryRepo: ledgerCategoryRepo,
		tx:                 tx,
	}
}

// CreateSourceInput represents input for creating a source
type CreateSourceInput struct {
	Name     string
	Currency string
	OwnerID  uuid.UUID
	Email    string
	Settings *entity.SourceSettings
}

// CreateSource creates a source, makes the creator its controller and seeds the
// default income types and expense categories
func (s *SourceService) CreateSource(ctx context.Context, input *CreateSourceInput) (*entity.Source, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Source name is required")
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	settings := entity.DefaultSourceSettings(name)
	if input.Settings != nil {
		settings = *input.Settings
	}
	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	source := &entity.Source{
		Name:     name,
		Slug:     slug,
		OwnerID:  input.OwnerID,
		Currency: strings.ToUpper(currency),
		Settings: settings,
		IsActive: true,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.sourceRepo.Create(ctx, source); err != nil {
			return err
		}

		owner := &entity.SourceMember{
			SourceID: source.ID,
			UserID:   input.OwnerID,
			Email:    input.Email,
			Role:     enum.SourceRoleController,
		}
		owner.SetAccess(policy.FullAccess(enum.SourceRoleController))
		if err := s.sourceRepo.AddMember(ctx, owner); err != nil {
			return err
		}

		return s.ledgerCategoryRepo.CreateBatch(repository.WithSource(ctx, source.ID), entity.DefaultLedgerCategories(source.ID))
	})
	if err != nil {
		return nil, domainError(err)
	}

	return source, nil
}

func (s *SourceService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "source"
	}

	slug := base
	for i := 0; i < 5; i++ {
		existing, err := s.sourceRepo.GetBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		slug = base + "-" + uuid.New().String()[:6]
	}
	return "", apperror.NewConflictError("Could not allocate a unique source slug")
}

// GetSource retrieves a source by ID
func (s *SourceService) GetSource(ctx context.Context, id uuid.UUID) (*entity.Source, error) {
	source, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.NewNotFoundError("Source")
	}
	return source, nil
}

// MySource pairs a source with the caller's membership in it
type MySource struct {
	entity.Source
	Role          enum.SourceRole `json:"role"`
	IncomeAccess  bool            `json:"income_access"`
	ExpenseAccess bool            `json:"expense_access"`
	BillingAccess bool            `json:"billing_access"`
}

// ListMySources retrieves all sources a user belongs to
func (s *SourceService) ListMySources(ctx context.Context, userID uuid.UUID) ([]MySource, error) {
	sources, err := s.sourceRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]MySource, 0, len(sources))
	for _, src := range sources {
		member, err := s.sourceRepo.GetMember(ctx, src.ID, userID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			continue
		}
		out = append(out, MySource{
			Source:        src,
			Role:          member.Role,
			IncomeAccess:  member.IncomeAccess,
			ExpenseAccess: member.ExpenseAccess,
			BillingAccess: member.BillingAccess,
		})
	}
	return out, nil
}

// GetMembership returns the caller's membership or nil when they do not belong to the source
func (s *SourceService) GetMembership(ctx context.Context, sourceID, userID uuid.UUID) (*entity.SourceMember, error) {
	return s.sourceRepo.GetMember(ctx, sourceID, userID)
}

// UpdateSourceInput represents input for updating a source
type UpdateSourceInput struct {
	ID       uuid.UUID
	Name     string
	Currency string
	Settings *entity.SourceSettings
}

// UpdateSource updates a source
func (s *SourceService) UpdateSource(ctx context.Context, input *UpdateSourceInput) (*entity.Source, error) {
	source, err := s.GetSource(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		source.Name = name
	}
	if input.Currency != "" {
		source.Currency = strings.ToUpper(input.Currency)
	}
	if input.Settings != nil {
		source.Settings = *input.Settings
	}

	if err := s.sourceRepo.Update(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

// ListMembers lists the members of a source
func (s *SourceService) ListMembers(ctx context.Context, sourceID uuid.UUID) ([]entity.SourceMember, error) {
	return s.sourceRepo.ListMembers(ctx, sourceID)
}

func (s *SourceService) getMember(ctx context.Context, sourceID, userID uuid.UUID) (*entity.SourceMember, error) {
	member, err := s.sourceRepo.GetMember(ctx, sourceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperror.NewNotFoundError("Member")
	}
	return member, nil
}

// ensureAnotherController fails when member is the source's last controller
func (s *SourceService) ensureAnotherController(ctx context.Context, member *entity.SourceMember) error {
	if member.Role != enum.SourceRoleController {
		return nil
	}
	n, err := s.sourceRepo.CountByRole(ctx, member.SourceID, enum.SourceRoleController)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperror.NewConflictError("A source must keep at least one controller")
	}
	return nil
}

// UpdateMemberRole changes a member's role. Promotion to controller grants every flag.
func (s *SourceService) UpdateMemberRole(ctx context.Context, sourceID, userID uuid.UUID, role enum.SourceRole) (*entity.SourceMember, error) {
	if !role.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid role")
	}

	var member *entity.SourceMember
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		member, err = s.getMember(ctx, sourceID, userID)
		if err != nil {
			return err
		}
		if member.Role == role {
			return nil
		}
		if role != enum.SourceRoleController {
			if err := s.ensureAnotherController(ctx, member); err != nil {
				return err
			}
		}

		member.Role = role
		switch role {
		case enum.SourceRoleController:
			member.SetAccess(policy.FullAccess(role))
		case enum.SourceRoleViewer:
			member.SetAccess(policy.Access{Role: role})
		}
		return s.sourceRepo.UpdateMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberAccessInput toggles a member's access flags. Nil leaves a flag unchanged.
type UpdateMemberAccessInput struct {
	IncomeAccess  *bool
	ExpenseAccess *bool
	BillingAccess *bool
}

// UpdateMemberAccess changes a member's income, expense and billing flags
func (s *SourceService) UpdateMemberAccess(ctx context.Context, sourceID, userID uuid.UUID, input *UpdateMemberAccessInput) (*entity.SourceMember, error) {
	member, err := s.getMember(ctx, sourceID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role == enum.SourceRoleController {
		return nil, apperror.NewBadRequestError("Controller access cannot be narrowed")
	}

	access := member.Access()
	if input.IncomeAccess != nil {
		access.IncomeAccess = *input.IncomeAccess
	}
	if input.ExpenseAccess != nil {
		access.ExpenseAccess = *input.ExpenseAccess
	}
	if input.BillingAccess != nil {
		access.BillingAccess = *input.BillingAccess
	}
	member.SetAccess(access)

	if err := s.sourceRepo.UpdateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes a user from a source
func (s *SourceService) RemoveMember(ctx context.Context, sourceID, userID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.getMember(ctx, sourceID, userID)
		if err != nil {
			return err
		}
		if err := s.ensureAnotherController(ctx, member); err != nil {
			return err
		}
		return s.sourceRepo.RemoveMember(ctx, sourceID, userID)
	})
}
