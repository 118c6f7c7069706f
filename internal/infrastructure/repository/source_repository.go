package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
)

type sourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *gorm.DB) domainRepo.SourceRepository {
	return &sourceRepository{db: db}
}

func (r *sourceRepository) Create(ctx context.Context, source *entity.Source) error {
	return translate(conn(ctx, r.db).Omit("Members").Create(source).Error)
}

func (r *sourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Source, error) {
	var source entity.Source
	err := conn(ctx, r.db).First(&source, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &source, err
}

func (r *sourceRepository) GetBySlug(ctx context.Context, slug string) (*entity.Source, error) {
	var source entity.Source
	err := conn(ctx, r.db).First(&source, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &source, err
}

func (r *sourceRepository) Update(ctx context.Context, source *entity.Source) error {
	return conn(ctx, r.db).Omit("Members").Save(source).Error
}

func (r *sourceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Source, error) {
	var sources []entity.Source
	err := conn(ctx, r.db).
		Joins("JOIN source_members ON source_members.source_id = sources.id").
		Where("source_members.user_id = ?", userID).
		Order("sources.created_at ASC").
		Find(&sources).Error
	return sources, err
}

func (r *sourceRepository) AddMember(ctx context.Context, member *entity.SourceMember) error {
	member.Email = strings.ToLower(member.Email)
	return translate(conn(ctx, r.db).Omit("Source").Create(member).Error)
}

func (r *sourceRepository) GetMember(ctx context.Context, sourceID, userID uuid.UUID) (*entity.SourceMember, error) {
	var member entity.SourceMember
	err := conn(ctx, r.db).
		Where("source_id = ? AND user_id = ?", sourceID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &member, err
}

func (r *sourceRepository) FindMemberByEmail(ctx context.Context, sourceID uuid.UUID, email string) (*entity.SourceMember, error) {
	var member entity.SourceMember
	err := conn(ctx, r.db).
		Where("source_id = ? AND email = ?", sourceID, strings.ToLower(email)).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &member, err
}

func (r *sourceRepository) ListMembers(ctx context.Context, sourceID uuid.UUID) ([]entity.SourceMember, error) {
	var members []entity.SourceMember
	err := conn(ctx, r.db).
		Where("source_id = ?", sourceID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *sourceRepository) UpdateMember(ctx context.Context, member *entity.SourceMember) error {
	return conn(ctx, r.db).Omit("Source").Save(member).Error
}

func (r *sourceRepository) RemoveMember(ctx context.Context, sourceID, userID uuid.UUID) error {
	return conn(ctx, r.db).
		Where("source_id = ? AND user_id = ?", sourceID, userID).
		Delete(&entity.SourceMember{}).Error
}

func (r *sourceRepository) CountByRole(ctx context.Context, sourceID uuid.UUID, role enum.SourceRole) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.SourceMember{}).
		Where("source_id = ? AND role = ?", sourceID, role).
		Count(&count).Error
	return count, err
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) domainRepo.InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *entity.Invitation) error {
	inv.Email = strings.ToLower(inv.Email)
	return conn(ctx, r.db).Omit("Source").Create(inv).Error
}

func (r *invitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	var inv entity.Invitation
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inv, err
}

func (r *invitationRepository) Update(ctx context.Context, inv *entity.Invitation) error {
	return conn(ctx, r.db).Omit("Source").Save(inv).Error
}

func (r *invitationRepository) FindPending(ctx context.Context, email string) (*entity.Invitation, error) {
	var inv entity.Invitation
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).
		Where("email = ? AND status = ?", strings.ToLower(email), enum.InvitationPending).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inv, err
}

func (r *invitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]entity.Invitation, error) {
	var invs []entity.Invitation
	err := conn(ctx, r.db).
		Preload("Source").
		Where("email = ? AND status = ?", strings.ToLower(email), enum.InvitationPending).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

func (r *invitationRepository) List(ctx context.Context, status *enum.InvitationStatus) ([]entity.Invitation, error) {
	var invs []entity.Invitation
	query := conn(ctx, r.db).Scopes(SourceScope(ctx))
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&invs).Error
	return invs, err
}
