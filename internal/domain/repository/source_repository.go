package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// SourceRepository defines the interface for source and membership data operations.
// Sources are not source-scoped; lookups are by id or membership.
type SourceRepository interface {
	Create(ctx context.Context, source *entity.Source) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Source, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Source, error)
	Update(ctx context.Context, source *entity.Source) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Source, error)

	AddMember(ctx context.Context, member *entity.SourceMember) error
	GetMember(ctx context.Context, sourceID, userID uuid.UUID) (*entity.SourceMember, error)
	ListMembers(ctx context.Context, sourceID uuid.UUID) ([]entity.SourceMember, error)
	UpdateMember(ctx context.Context, member *entity.SourceMember) error
	RemoveMember(ctx context.Context, sourceID, userID uuid.UUID) error
	CountByRole(ctx context.Context, sourceID uuid.UUID, role enum.SourceRole) (int64, error)
	FindMemberByEmail(ctx context.Context, sourceID uuid.UUID, email string) (*entity.SourceMember, error)
}

// InvitationRepository defines the interface for invitation data operations
type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error)
	Update(ctx context.Context, inv *entity.Invitation) error
	// FindPending returns the open invitation for an email in the scoped source
	FindPending(ctx context.Context, email string) (*entity.Invitation, error)
	// ListPendingByEmail is not source-scoped; it backs the accept flow
	ListPendingByEmail(ctx context.Context, email string) ([]entity.Invitation, error)
	List(ctx context.Context, status *enum.InvitationStatus) ([]entity.Invitation, error)
}
