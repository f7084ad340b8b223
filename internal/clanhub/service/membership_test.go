package service

import (
	"context"
	"testing"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newMembershipService(t *testing.T) *MembershipService {
	t.Helper()
	return &MembershipService{Store: newTestStore(t)}
}

func requireInClan(t *testing.T, svc *MembershipService, playerID, clanID string) {
	t.Helper()
	ctx := context.Background()

	member, err := svc.Store.Members().GetMemberByPlayer(ctx, playerID)
	require.NoError(t, err)
	require.Equal(t, clanID, member.ClanID)

	player, err := svc.Store.Players().GetPlayerByID(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, player.CurrentClanID)
	require.Equal(t, clanID, *player.CurrentClanID)
}

func requireClanless(t *testing.T, svc *MembershipService, playerID string) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.Store.Members().GetMemberByPlayer(ctx, playerID)
	require.Error(t, err)

	player, err := svc.Store.Players().GetPlayerByID(ctx, playerID)
	require.NoError(t, err)
	require.Nil(t, player.CurrentClanID)
}

func TestCreateClanMakesCreatorOwner(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")

	clan, err := svc.CreateClan(ctx, Actor{PlayerID: owner.ID}, CreateClanInput{
		Tag:  "TAG",
		Name: "The Clan",
	})
	require.NoError(t, err)
	require.Equal(t, "orange", clan.Theme)
	require.Equal(t, 1, clan.Level)

	requireInClan(t, svc, owner.ID, clan.ID)

	member, err := svc.Store.Members().GetMember(ctx, clan.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, member.Role)
}

func TestCreateClanRejectsMemberOfAnotherClan(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	createTestClan(t, svc, owner, "ONE")

	_, err := svc.CreateClan(ctx, Actor{PlayerID: owner.ID}, CreateClanInput{Tag: "TWO", Name: "Second"})
	require.ErrorIs(t, err, ErrAlreadyInClan)
}

func TestCreateClanRejectsDuplicateTag(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	a := createTestPlayer(t, svc.Store, "a")
	b := createTestPlayer(t, svc.Store, "b")
	createTestClan(t, svc, a, "TAG")

	_, err := svc.CreateClan(ctx, Actor{PlayerID: b.ID}, CreateClanInput{Tag: "TAG", Name: "Copycat"})
	require.ErrorIs(t, err, ErrConflict)

	// Nothing half-created: the loser stays clanless.
	requireClanless(t, svc, b.ID)
}

func TestCreateClanValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	p := createTestPlayer(t, svc.Store, "p")

	_, err := svc.CreateClan(ctx, Actor{PlayerID: p.ID}, CreateClanInput{Tag: "", Name: "No Tag"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateClan(ctx, Actor{PlayerID: p.ID}, CreateClanInput{Tag: "T", Name: "X", Theme: "purple"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestJoinAndSingleMembership(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	joiner := createTestPlayer(t, svc.Store, "joiner")
	clan := createTestClan(t, svc, owner, "TAG")
	other := createTestClan(t, svc, createTestPlayer(t, svc.Store, "other"), "OTH")

	require.NoError(t, svc.Join(ctx, Actor{PlayerID: joiner.ID}, clan.ID))
	requireInClan(t, svc, joiner.ID, clan.ID)

	// One membership system-wide.
	err := svc.Join(ctx, Actor{PlayerID: joiner.ID}, other.ID)
	require.ErrorIs(t, err, ErrAlreadyInClan)
	requireInClan(t, svc, joiner.ID, clan.ID)
}

func TestJoinUnknownClan(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	p := createTestPlayer(t, svc.Store, "p")

	require.ErrorIs(t, svc.Join(ctx, Actor{PlayerID: p.ID}, "missing"), ErrNotFound)
}

func TestLeaveClearsMembershipButRefusesOwner(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	member := createTestPlayer(t, svc.Store, "member")
	clan := createTestClan(t, svc, owner, "TAG")
	require.NoError(t, svc.Join(ctx, Actor{PlayerID: member.ID}, clan.ID))

	require.ErrorIs(t, svc.Leave(ctx, Actor{PlayerID: owner.ID}, clan.ID), ErrOwnerMustTransfer)

	require.NoError(t, svc.Leave(ctx, Actor{PlayerID: member.ID}, clan.ID))
	requireClanless(t, svc, member.ID)
}

func TestApplyRequiresClanlessAndUniquePending(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	clan := createTestClan(t, svc, owner, "TAG")

	_, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clan.ID, "let me in")
	require.NoError(t, err)

	// Second pending application for the same clan is refused.
	_, err = svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clan.ID, "again")
	require.ErrorIs(t, err, ErrDuplicatePending)

	// Members cannot apply anywhere.
	_, err = svc.Apply(ctx, Actor{PlayerID: owner.ID}, clan.ID, "hi")
	require.ErrorIs(t, err, ErrAlreadyInClan)
}

func TestApproveApplicationAdmitsAndCascades(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	ownerA := createTestPlayer(t, svc.Store, "ownerA")
	ownerB := createTestPlayer(t, svc.Store, "ownerB")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	clanA := createTestClan(t, svc, ownerA, "AAA")
	clanB := createTestClan(t, svc, ownerB, "BBB")

	appA, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clanA.ID, "")
	require.NoError(t, err)
	appB, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clanB.ID, "")
	require.NoError(t, err)
	invB, err := svc.Invite(ctx, Actor{PlayerID: ownerB.ID}, clanB.ID, applicant.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.ApproveApplication(ctx, Actor{PlayerID: ownerA.ID}, appA.ID))
	requireInClan(t, svc, applicant.ID, clanA.ID)

	// Every other pending path auto-rejected.
	gotB, err := svc.Store.Applications().GetApplicationByID(ctx, appB.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, gotB.Status)

	gotInv, err := svc.Store.Invitations().GetInvitationByID(ctx, invB.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, gotInv.Status)

	gotA, err := svc.Store.Applications().GetApplicationByID(ctx, appA.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, gotA.Status)
}

func TestApproveApplicationOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	rando := createTestPlayer(t, svc.Store, "rando")
	clan := createTestClan(t, svc, owner, "TAG")

	app, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clan.ID, "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ApproveApplication(ctx, Actor{PlayerID: rando.ID}, app.ID), ErrForbidden)

	// Admins bypass the owner check.
	require.NoError(t, svc.ApproveApplication(ctx, Actor{PlayerID: rando.ID, Admin: true}, app.ID))
}

func TestApproveAutoRejectsWhenApplicantJoinedElsewhere(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	ownerA := createTestPlayer(t, svc.Store, "ownerA")
	ownerC := createTestPlayer(t, svc.Store, "ownerC")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	clanA := createTestClan(t, svc, ownerA, "AAA")
	clanC := createTestClan(t, svc, ownerC, "CCC")

	app, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clanA.ID, "")
	require.NoError(t, err)

	// Applicant joins C directly while A's application sits pending. The
	// direct join already cascades the pending application to rejected.
	require.NoError(t, svc.Join(ctx, Actor{PlayerID: applicant.ID}, clanC.ID))

	err = svc.ApproveApplication(ctx, Actor{PlayerID: ownerA.ID}, app.ID)
	require.Error(t, err)
	requireInClan(t, svc, applicant.ID, clanC.ID)

	got, err := svc.Store.Applications().GetApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, got.Status)
}

// seedMember plants a raw membership row, skipping the engine and its
// pending-path cascades.
func seedMember(t *testing.T, svc *MembershipService, clanID, playerID string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, svc.Store.Members().CreateMember(ctx, domain.ClanMember{
		ID:       idx.New().String(),
		ClanID:   clanID,
		PlayerID: playerID,
		Role:     domain.RoleMember,
		JoinedAt: time.Now(),
	}))
	require.NoError(t, svc.Store.Players().SetCurrentClan(ctx, playerID, &clanID))
}

func TestApproveAutoRejectIsCommitted(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	ownerA := createTestPlayer(t, svc.Store, "ownerA")
	ownerC := createTestPlayer(t, svc.Store, "ownerC")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	clanA := createTestClan(t, svc, ownerA, "AAA")
	clanC := createTestClan(t, svc, ownerC, "CCC")

	app, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clanA.ID, "")
	require.NoError(t, err)

	// A membership that appeared without the cascade firing, so the
	// application is still pending when the owner approves.
	seedMember(t, svc, clanC.ID, applicant.ID)

	err = svc.ApproveApplication(ctx, Actor{PlayerID: ownerA.ID}, app.ID)
	require.ErrorIs(t, err, ErrAlreadyInClan)

	// The auto-reject survives the failed call.
	got, err := svc.Store.Applications().GetApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, got.Status)
	requireInClan(t, svc, applicant.ID, clanC.ID)
}

func TestAcceptInvitationAutoRejectIsCommitted(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	ownerA := createTestPlayer(t, svc.Store, "ownerA")
	ownerC := createTestPlayer(t, svc.Store, "ownerC")
	invitee := createTestPlayer(t, svc.Store, "invitee")
	clanA := createTestClan(t, svc, ownerA, "AAA")
	clanC := createTestClan(t, svc, ownerC, "CCC")

	inv, err := svc.Invite(ctx, Actor{PlayerID: ownerA.ID}, clanA.ID, invitee.ID, "")
	require.NoError(t, err)

	seedMember(t, svc, clanC.ID, invitee.ID)

	err = svc.AcceptInvitation(ctx, Actor{PlayerID: invitee.ID}, inv.ID)
	require.ErrorIs(t, err, ErrAlreadyInClan)

	got, err := svc.Store.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, got.Status)
	requireInClan(t, svc, invitee.ID, clanC.ID)
}

func TestRejectAndWithdrawApplication(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	clan := createTestClan(t, svc, owner, "TAG")

	app, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clan.ID, "")
	require.NoError(t, err)

	// Only the applicant may withdraw.
	require.ErrorIs(t, svc.WithdrawApplication(ctx, Actor{PlayerID: owner.ID}, app.ID), ErrForbidden)
	require.NoError(t, svc.WithdrawApplication(ctx, Actor{PlayerID: applicant.ID}, app.ID))

	// Withdrawn means gone; a fresh application is allowed.
	app2, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clan.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.RejectApplication(ctx, Actor{PlayerID: owner.ID}, app2.ID))

	// Terminal status transitions are refused.
	require.ErrorIs(t, svc.ApproveApplication(ctx, Actor{PlayerID: owner.ID}, app2.ID), ErrConflict)
	require.ErrorIs(t, svc.RejectApplication(ctx, Actor{PlayerID: owner.ID}, app2.ID), ErrConflict)
	requireClanless(t, svc, applicant.ID)
}

func TestInvitationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	invitee := createTestPlayer(t, svc.Store, "invitee")
	clan := createTestClan(t, svc, owner, "TAG")

	// Owner-only to invite.
	_, err := svc.Invite(ctx, Actor{PlayerID: invitee.ID}, clan.ID, invitee.ID, "")
	require.ErrorIs(t, err, ErrForbidden)

	inv, err := svc.Invite(ctx, Actor{PlayerID: owner.ID}, clan.ID, invitee.ID, "join us")
	require.NoError(t, err)
	require.Equal(t, owner.ID, inv.InvitedByID)

	// One pending invitation per (clan, player).
	_, err = svc.Invite(ctx, Actor{PlayerID: owner.ID}, clan.ID, invitee.ID, "")
	require.ErrorIs(t, err, ErrDuplicatePending)

	// Only the recipient can accept.
	require.ErrorIs(t, svc.AcceptInvitation(ctx, Actor{PlayerID: owner.ID}, inv.ID), ErrForbidden)

	require.NoError(t, svc.AcceptInvitation(ctx, Actor{PlayerID: invitee.ID}, inv.ID))
	requireInClan(t, svc, invitee.ID, clan.ID)

	// Accepting twice is a conflict.
	require.ErrorIs(t, svc.AcceptInvitation(ctx, Actor{PlayerID: invitee.ID}, inv.ID), ErrConflict)
}

func TestInviteRejectsExistingMember(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	clan := createTestClan(t, svc, owner, "TAG")

	_, err := svc.Invite(ctx, Actor{PlayerID: owner.ID}, clan.ID, owner.ID, "")
	require.ErrorIs(t, err, ErrAlreadyInClan)
}

func TestRejectAndCancelInvitation(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	invitee := createTestPlayer(t, svc.Store, "invitee")
	clan := createTestClan(t, svc, owner, "TAG")

	inv, err := svc.Invite(ctx, Actor{PlayerID: owner.ID}, clan.ID, invitee.ID, "")
	require.NoError(t, err)
	require.NoError(t, svc.RejectInvitation(ctx, Actor{PlayerID: invitee.ID}, inv.ID))
	requireClanless(t, svc, invitee.ID)

	// A rejected invitation no longer blocks a new one.
	inv2, err := svc.Invite(ctx, Actor{PlayerID: owner.ID}, clan.ID, invitee.ID, "")
	require.NoError(t, err)

	// Cancel is owner-only and deletes the row.
	require.ErrorIs(t, svc.CancelInvitation(ctx, Actor{PlayerID: invitee.ID}, inv2.ID), ErrForbidden)
	require.NoError(t, svc.CancelInvitation(ctx, Actor{PlayerID: owner.ID}, inv2.ID))
	_, err = svc.Store.Invitations().GetInvitationByID(ctx, inv2.ID)
	require.Error(t, err)
}

func TestKick(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	member := createTestPlayer(t, svc.Store, "member")
	clan := createTestClan(t, svc, owner, "TAG")
	require.NoError(t, svc.Join(ctx, Actor{PlayerID: member.ID}, clan.ID))

	// Members cannot kick.
	require.ErrorIs(t, svc.Kick(ctx, Actor{PlayerID: member.ID}, clan.ID, owner.ID), ErrForbidden)

	// Owners are unkickable even by admins.
	require.ErrorIs(t, svc.Kick(ctx, Actor{PlayerID: member.ID, Admin: true}, clan.ID, owner.ID), ErrForbidden)

	require.NoError(t, svc.Kick(ctx, Actor{PlayerID: owner.ID}, clan.ID, member.ID))
	requireClanless(t, svc, member.ID)
}

func TestChangeRoleTransfersSingleOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	member := createTestPlayer(t, svc.Store, "member")
	clan := createTestClan(t, svc, owner, "TAG")
	require.NoError(t, svc.Join(ctx, Actor{PlayerID: member.ID}, clan.ID))

	require.NoError(t, svc.ChangeRole(ctx, Actor{PlayerID: owner.ID}, clan.ID, member.ID, domain.RoleOwner))

	// Promotion demoted the previous owner: exactly one owner remains.
	owners, err := svc.Store.Members().CountOwners(ctx, clan.ID)
	require.NoError(t, err)
	require.Equal(t, 1, owners)

	got, err := svc.Store.Members().GetMember(ctx, clan.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, got.Role)

	// The demoted owner can now leave.
	require.NoError(t, svc.Leave(ctx, Actor{PlayerID: owner.ID}, clan.ID))
}

func TestChangeRoleRefusesDemotingSoleOwner(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	clan := createTestClan(t, svc, owner, "TAG")

	err := svc.ChangeRole(ctx, Actor{PlayerID: owner.ID}, clan.ID, owner.ID, domain.RoleMember)
	require.ErrorIs(t, err, ErrSoleOwner)

	require.ErrorIs(t, svc.ChangeRole(ctx, Actor{PlayerID: owner.ID}, clan.ID, owner.ID, "captain"), ErrValidation)
}

func TestAssignOwnerIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	member := createTestPlayer(t, svc.Store, "member")
	clan := createTestClan(t, svc, owner, "TAG")
	require.NoError(t, svc.Join(ctx, Actor{PlayerID: member.ID}, clan.ID))

	require.ErrorIs(t, svc.AssignOwner(ctx, Actor{PlayerID: member.ID}, clan.ID, member.ID), ErrForbidden)

	require.NoError(t, svc.AssignOwner(ctx, Actor{PlayerID: "support", Admin: true}, clan.ID, member.ID))

	owners, err := svc.Store.Members().CountOwners(ctx, clan.ID)
	require.NoError(t, err)
	require.Equal(t, 1, owners)

	got, err := svc.Store.Members().GetMember(ctx, clan.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, got.Role)
}

func TestDeleteClanCascades(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	member := createTestPlayer(t, svc.Store, "member")
	applicant := createTestPlayer(t, svc.Store, "applicant")
	invitee := createTestPlayer(t, svc.Store, "invitee")
	clan := createTestClan(t, svc, owner, "TAG")

	require.NoError(t, svc.Join(ctx, Actor{PlayerID: member.ID}, clan.ID))
	_, err := svc.Apply(ctx, Actor{PlayerID: applicant.ID}, clan.ID, "")
	require.NoError(t, err)
	_, err = svc.Invite(ctx, Actor{PlayerID: owner.ID}, clan.ID, invitee.ID, "")
	require.NoError(t, err)

	// Members cannot delete the clan.
	require.ErrorIs(t, svc.DeleteClan(ctx, Actor{PlayerID: member.ID}, clan.ID), ErrForbidden)

	require.NoError(t, svc.DeleteClan(ctx, Actor{PlayerID: owner.ID}, clan.ID))

	_, err = svc.Store.Clans().GetClanByID(ctx, clan.ID)
	require.Error(t, err)
	requireClanless(t, svc, owner.ID)
	requireClanless(t, svc, member.ID)

	apps, err := svc.Store.Applications().ListClanApplications(ctx, clan.ID, "")
	require.NoError(t, err)
	require.Empty(t, apps)

	invs, err := svc.Store.Invitations().ListClanInvitations(ctx, clan.ID, "")
	require.NoError(t, err)
	require.Empty(t, invs)
}

func TestDeleteClanAdminBypass(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	owner := createTestPlayer(t, svc.Store, "owner")
	clan := createTestClan(t, svc, owner, "TAG")

	require.NoError(t, svc.DeleteClan(ctx, Actor{PlayerID: "support", Admin: true}, clan.ID))
	_, err := svc.Store.Clans().GetClanByID(ctx, clan.ID)
	require.Error(t, err)
}

func TestListPendingForPlayer(t *testing.T) {
	ctx := context.Background()
	svc := newMembershipService(t)
	ownerA := createTestPlayer(t, svc.Store, "ownerA")
	ownerB := createTestPlayer(t, svc.Store, "ownerB")
	p := createTestPlayer(t, svc.Store, "p")
	clanA := createTestClan(t, svc, ownerA, "AAA")
	clanB := createTestClan(t, svc, ownerB, "BBB")

	_, err := svc.Apply(ctx, Actor{PlayerID: p.ID}, clanA.ID, "")
	require.NoError(t, err)
	_, err = svc.Invite(ctx, Actor{PlayerID: ownerB.ID}, clanB.ID, p.ID, "")
	require.NoError(t, err)

	apps, err := svc.ListMyApplications(ctx, Actor{PlayerID: p.ID})
	require.NoError(t, err)
	require.Len(t, apps, 1)

	invs, err := svc.ListMyInvitations(ctx, Actor{PlayerID: p.ID})
	require.NoError(t, err)
	require.Len(t, invs, 1)
}
