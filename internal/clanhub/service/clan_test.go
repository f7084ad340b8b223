package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestUpdateSettingsPartial(t *testing.T) {
	ctx := context.Background()
	membership := newMembershipService(t)
	svc := &ClanService{Store: membership.Store}
	owner := createTestPlayer(t, membership.Store, "owner")
	clan := createTestClan(t, membership, owner, "TAG")

	updated, err := svc.UpdateSettings(ctx, Actor{PlayerID: owner.ID}, clan.ID, UpdateSettingsInput{
		Description: ptr("we scrim tuesdays"),
		Theme:       ptr("blue"),
	})
	require.NoError(t, err)
	require.Equal(t, "we scrim tuesdays", updated.Description)
	require.Equal(t, "blue", updated.Theme)

	// Untouched fields keep their values.
	require.Equal(t, clan.Name, updated.Name)
	require.Equal(t, clan.Tag, updated.Tag)

	got, err := svc.GetClan(ctx, clan.ID)
	require.NoError(t, err)
	require.Equal(t, "blue", got.Theme)
}

func TestUpdateSettingsValidation(t *testing.T) {
	ctx := context.Background()
	membership := newMembershipService(t)
	svc := &ClanService{Store: membership.Store}
	owner := createTestPlayer(t, membership.Store, "owner")
	clan := createTestClan(t, membership, owner, "TAG")

	_, err := svc.UpdateSettings(ctx, Actor{PlayerID: owner.ID}, clan.ID, UpdateSettingsInput{Theme: ptr("purple")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateSettings(ctx, Actor{PlayerID: owner.ID}, clan.ID, UpdateSettingsInput{Name: ptr("")})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateSettingsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	membership := newMembershipService(t)
	svc := &ClanService{Store: membership.Store}
	owner := createTestPlayer(t, membership.Store, "owner")
	member := createTestPlayer(t, membership.Store, "member")
	clan := createTestClan(t, membership, owner, "TAG")
	require.NoError(t, membership.Join(ctx, Actor{PlayerID: member.ID}, clan.ID))

	_, err := svc.UpdateSettings(ctx, Actor{PlayerID: member.ID}, clan.ID, UpdateSettingsInput{Theme: ptr("blue")})
	require.ErrorIs(t, err, ErrForbidden)

	// Admins may edit any clan.
	_, err = svc.UpdateSettings(ctx, Actor{PlayerID: "support", Admin: true}, clan.ID, UpdateSettingsInput{Theme: ptr("blue")})
	require.NoError(t, err)
}

func TestGetClanByTag(t *testing.T) {
	ctx := context.Background()
	membership := newMembershipService(t)
	svc := &ClanService{Store: membership.Store}
	owner := createTestPlayer(t, membership.Store, "owner")
	clan := createTestClan(t, membership, owner, "TAG")

	got, err := svc.GetClanByTag(ctx, "TAG")
	require.NoError(t, err)
	require.Equal(t, clan.ID, got.ID)

	_, err = svc.GetClanByTag(ctx, "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
}
