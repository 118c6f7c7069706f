package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
)

type sourceRepository struct{ s *Store }

// NewSourceRepository creates an in-memory source repository
func NewSourceRepository(s *Store) domainRepo.SourceRepository {
	return &sourceRepository{s: s}
}

func (r *sourceRepository) Create(ctx context.Context, source *entity.Source) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	for _, existing := range r.s.sources {
		if existing.Slug == source.Slug {
			return domainRepo.ErrDuplicate
		}
	}
	ensureID(&source.ID)
	r.s.stamp(&source.CreatedAt, &source.UpdatedAt)
	stored := *source
	stored.Members = nil
	r.s.sources[source.ID] = stored
	return nil
}

func (r *sourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Source, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	source, ok := r.s.sources[id]
	if !ok {
		return nil, nil
	}
	return &source, nil
}

func (r *sourceRepository) GetBySlug(ctx context.Context, slug string) (*entity.Source, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	for _, source := range r.s.sources {
		if source.Slug == slug {
			out := source
			return &out, nil
		}
	}
	return nil, nil
}

func (r *sourceRepository) Update(ctx context.Context, source *entity.Source) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &source.UpdatedAt)
	stored := *source
	stored.Members = nil
	r.s.sources[source.ID] = stored
	return nil
}

func (r *sourceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Source, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []entity.Source
	for key := range r.s.members {
		if key.userID != userID {
			continue
		}
		if source, ok := r.s.sources[key.sourceID]; ok {
			out = append(out, source)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *sourceRepository) AddMember(ctx context.Context, member *entity.SourceMember) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	key := memberKey{member.SourceID, member.UserID}
	if _, exists := r.s.members[key]; exists {
		return domainRepo.ErrDuplicate
	}
	member.Email = strings.ToLower(member.Email)
	r.s.stamp(&member.CreatedAt, &member.UpdatedAt)
	stored := *member
	stored.Source = nil
	r.s.members[key] = stored
	return nil
}

func (r *sourceRepository) GetMember(ctx context.Context, sourceID, userID uuid.UUID) (*entity.SourceMember, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	member, ok := r.s.members[memberKey{sourceID, userID}]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (r *sourceRepository) FindMemberByEmail(ctx context.Context, sourceID uuid.UUID, email string) (*entity.SourceMember, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	email = strings.ToLower(email)
	for key, member := range r.s.members {
		if key.sourceID == sourceID && member.Email == email {
			out := member
			return &out, nil
		}
	}
	return nil, nil
}

func (r *sourceRepository) ListMembers(ctx context.Context, sourceID uuid.UUID) ([]entity.SourceMember, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []entity.SourceMember
	for key, member := range r.s.members {
		if key.sourceID == sourceID {
			out = append(out, member)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *sourceRepository) UpdateMember(ctx context.Context, member *entity.SourceMember) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &member.UpdatedAt)
	stored := *member
	stored.Source = nil
	r.s.members[memberKey{member.SourceID, member.UserID}] = stored
	return nil
}

func (r *sourceRepository) RemoveMember(ctx context.Context, sourceID, userID uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	delete(r.s.members, memberKey{sourceID, userID})
	return nil
}

func (r *sourceRepository) CountByRole(ctx context.Context, sourceID uuid.UUID, role enum.SourceRole) (int64, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var n int64
	for key, member := range r.s.members {
		if key.sourceID == sourceID && member.Role == role {
			n++
		}
	}
	return n, nil
}

type invitationRepository struct{ s *Store }

// NewInvitationRepository creates an in-memory invitation repository
func NewInvitationRepository(s *Store) domainRepo.InvitationRepository {
	return &invitationRepository{s: s}
}

func (r *invitationRepository) Create(ctx context.Context, inv *entity.Invitation) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	ensureID(&inv.ID)
	inv.Email = strings.ToLower(inv.Email)
	r.s.stamp(&inv.CreatedAt, &inv.UpdatedAt)
	stored := *inv
	stored.Source = nil
	r.s.invitations[inv.ID] = stored
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	inv, ok := r.s.invitations[id]
	if !ok || !scoped(ctx, inv.SourceID) {
		return nil, nil
	}
	return &inv, nil
}

func (r *invitationRepository) Update(ctx context.Context, inv *entity.Invitation) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &inv.UpdatedAt)
	stored := *inv
	stored.Source = nil
	r.s.invitations[inv.ID] = stored
	return nil
}

func (r *invitationRepository) FindPending(ctx context.Context, email string) (*entity.Invitation, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	email = strings.ToLower(email)
	for _, inv := range r.s.invitations {
		if scoped(ctx, inv.SourceID) && inv.Email == email && inv.Status == enum.InvitationPending {
			out := inv
			return &out, nil
		}
	}
	return nil, nil
}

func (r *invitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]entity.Invitation, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	email = strings.ToLower(email)
	var out []entity.Invitation
	for _, inv := range r.s.invitations {
		if inv.Email != email || inv.Status != enum.InvitationPending {
			continue
		}
		if source, ok := r.s.sources[inv.SourceID]; ok {
			src := source
			inv.Source = &src
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *invitationRepository) List(ctx context.Context, status *enum.InvitationStatus) ([]entity.Invitation, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []entity.Invitation
	for _, inv := range r.s.invitations {
		if !scoped(ctx, inv.SourceID) {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
