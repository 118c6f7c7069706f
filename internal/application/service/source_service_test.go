package service

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/pkg/email"
)

func TestCreateSource_SeedsControllerAndCategories(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "corner-cafe", f.source.Slug)
	assert.Equal(t, "INR", f.source.Currency)

	mine, err := f.sources.ListMySources(f.ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, enum.SourceRoleController, mine[0].Role)
	assert.True(t, mine[0].BillingAccess)

	cats, err := f.ledger.ListCategories(f.ctx, nil, true)
	require.NoError(t, err)
	assert.NotEmpty(t, cats)

	again, err := f.sources.CreateSource(f.ctx, &CreateSourceInput{Name: "Corner Cafe", OwnerID: f.ownerID})
	require.NoError(t, err)
	assert.NotEqual(t, f.source.Slug, again.Slug)
}

func TestMembers_LastControllerIsKept(t *testing.T) {
	f := newFixture(t)

	_, err := f.sources.UpdateMemberRole(f.ctx, f.source.ID, f.ownerID, enum.SourceRoleAdmin)
	assertStatus(t, err, http.StatusConflict)

	err = f.sources.RemoveMember(f.ctx, f.source.ID, f.ownerID)
	assertStatus(t, err, http.StatusConflict)

	// with a second controller the first may step down
	res, err := f.invites.Invite(f.ctx, &InviteInput{Email: "co@example.com", Role: enum.SourceRoleController, InviterID: f.ownerID, InviterRole: enum.SourceRoleController})
	require.NoError(t, err)
	second := uuid.New()
	_, err = f.invites.Accept(sourceless(), second, "co@example.com", res.Code)
	require.NoError(t, err)

	member, err := f.sources.UpdateMemberRole(f.ctx, f.source.ID, f.ownerID, enum.SourceRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, enum.SourceRoleAdmin, member.Role)

	err = f.sources.RemoveMember(f.ctx, f.source.ID, second)
	assertStatus(t, err, http.StatusConflict)
}

func TestMembers_UpdateAccess(t *testing.T) {
	f := newFixture(t)
	res, err := f.invites.Invite(f.ctx, &InviteInput{Email: "cashier@example.com", Role: enum.SourceRoleAdmin, InviterID: f.ownerID, InviterRole: enum.SourceRoleController})
	require.NoError(t, err)
	cashier := uuid.New()
	_, err = f.invites.Accept(sourceless(), cashier, "cashier@example.com", res.Code)
	require.NoError(t, err)

	off := false
	member, err := f.sources.UpdateMemberAccess(f.ctx, f.source.ID, cashier, &UpdateMemberAccessInput{ExpenseAccess: &off})
	require.NoError(t, err)
	assert.True(t, member.IncomeAccess)
	assert.False(t, member.ExpenseAccess)
	assert.True(t, member.BillingAccess)

	_, err = f.sources.UpdateMemberAccess(f.ctx, f.source.ID, f.ownerID, &UpdateMemberAccessInput{ExpenseAccess: &off})
	assertStatus(t, err, http.StatusBadRequest)
}

type stubMailer struct {
	sent []email.Invitation
	err  error
}

func (m *stubMailer) Enabled() bool { return true }

func (m *stubMailer) SendInvitation(inv email.Invitation) error {
	m.sent = append(m.sent, inv)
	return m.err
}

func TestInvitation_AcceptFlow(t *testing.T) {
	f := newFixture(t)
	mailer := &stubMailer{}
	f.invites.mailer = mailer

	res, err := f.invites.Invite(f.ctx, &InviteInput{Email: " New@Example.com ", Role: enum.SourceRoleViewer, InviterID: f.ownerID, InviterEmail: "owner@example.com", InviterRole: enum.SourceRoleController})
	require.NoError(t, err)
	assert.True(t, res.Emailed)
	assert.NotEmpty(t, res.Code)
	assert.Equal(t, "new@example.com", res.Invitation.Email)
	assert.NotEqual(t, res.Code, res.Invitation.CodeHash)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Corner Cafe", mailer.sent[0].SourceName)

	_, err = f.invites.Invite(f.ctx, &InviteInput{Email: "new@example.com", Role: enum.SourceRoleViewer, InviterID: f.ownerID, InviterRole: enum.SourceRoleController})
	assertStatus(t, err, http.StatusConflict)

	userID := uuid.New()
	_, err = f.invites.Accept(sourceless(), userID, "new@example.com", "wrong-code")
	assertStatus(t, err, http.StatusNotFound)

	_, err = f.invites.Accept(sourceless(), userID, "someone@example.com", res.Code)
	assertStatus(t, err, http.StatusNotFound)

	member, err := f.invites.Accept(sourceless(), userID, "NEW@example.com", res.Code)
	require.NoError(t, err)
	assert.Equal(t, enum.SourceRoleViewer, member.Role)
	assert.False(t, member.IncomeAccess)
	assert.False(t, member.BillingAccess)

	accepted := enum.InvitationAccepted
	list, err := f.invites.ListInvitations(f.ctx, &accepted)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].AcceptedAt)

	_, err = f.invites.Invite(f.ctx, &InviteInput{Email: "new@example.com", Role: enum.SourceRoleViewer, InviterID: f.ownerID, InviterRole: enum.SourceRoleController})
	assertStatus(t, err, http.StatusConflict)
}

func TestInvitation_Rules(t *testing.T) {
	f := newFixture(t)

	t.Run("only controllers invite controllers", func(t *testing.T) {
		_, err := f.invites.Invite(f.ctx, &InviteInput{Email: "x@example.com", Role: enum.SourceRoleController, InviterRole: enum.SourceRoleAdmin})
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("members cannot be invited", func(t *testing.T) {
		_, err := f.invites.Invite(f.ctx, &InviteInput{Email: "OWNER@example.com", Role: enum.SourceRoleViewer, InviterRole: enum.SourceRoleController})
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("expired invitation", func(t *testing.T) {
		res, err := f.invites.Invite(f.ctx, &InviteInput{Email: "late@example.com", Role: enum.SourceRoleAdmin, InviterRole: enum.SourceRoleController})
		require.NoError(t, err)

		f.clock = f.clock.Add(73 * time.Hour)
		_, err = f.invites.Accept(sourceless(), uuid.New(), "late@example.com", res.Code)
		assertStatus(t, err, http.StatusGone)

		expired := enum.InvitationExpired
		list, err := f.invites.ListInvitations(f.ctx, &expired)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("revoke", func(t *testing.T) {
		res, err := f.invites.Invite(f.ctx, &InviteInput{Email: "gone@example.com", Role: enum.SourceRoleViewer, InviterRole: enum.SourceRoleController})
		require.NoError(t, err)
		require.NoError(t, f.invites.Revoke(f.ctx, res.Invitation.ID))

		assertStatus(t, f.invites.Revoke(f.ctx, res.Invitation.ID), http.StatusConflict)
		_, err = f.invites.Accept(sourceless(), uuid.New(), "gone@example.com", res.Code)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("mail failure still returns the code", func(t *testing.T) {
		f.invites.mailer = &stubMailer{err: errors.New("smtp down")}
		res, err := f.invites.Invite(f.ctx, &InviteInput{Email: "offline@example.com", Role: enum.SourceRoleViewer, InviterRole: enum.SourceRoleController})
		require.NoError(t, err)
		assert.False(t, res.Emailed)
		assert.NotEmpty(t, res.Code)
	})
}
