package service

import (
	"context"
	"testing"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/pkg/cryptox"
	"github.com/squadcommunity/clanhub/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, domain.Player) {
	t.Helper()

	st := newTestStore(t)
	player := createTestPlayer(t, st, "alice")

	svc := &AuthService{
		Codec: &tokenx.Codec{
			Secret: []byte("test-secret-test-secret-test-secret"),
			Issuer: "clanhub-test",
		},
		Store: st,
	}
	return svc, player
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	ctx := context.Background()
	svc, player := newAuthService(t)

	pair, err := svc.Login(ctx, player.ID, domain.ClientMeta{UserAgent: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, int64(3600), pair.ExpiresIn)

	got, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, player.ID, got.ID)

	// The session row stores the fingerprint, never the raw token.
	session, err := svc.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, player.ID, session.PlayerID)
	require.NotEqual(t, pair.RefreshToken, session.TokenHash)
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	ctx := context.Background()
	svc, player := newAuthService(t)

	pair, err := svc.Login(ctx, player.ID, domain.ClientMeta{})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken, domain.ClientMeta{})
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The rotated-out token must be single use.
	_, err = svc.Refresh(ctx, pair.RefreshToken, domain.ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidOrExpired)

	// The new token still works.
	_, err = svc.Refresh(ctx, next.RefreshToken, domain.ClientMeta{})
	require.NoError(t, err)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Refresh(ctx, "never-issued", domain.ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestRefreshRejectsExpiredSessionAndDeletesIt(t *testing.T) {
	ctx := context.Background()
	svc, player := newAuthService(t)
	svc.RefreshTTL = time.Nanosecond // sessions expire immediately

	pair, err := svc.Login(ctx, player.ID, domain.ClientMeta{})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken, domain.ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidOrExpired)

	// The expired row was purged on sight.
	_, err = svc.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.Error(t, err)
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, player := newAuthService(t)

	pair, err := svc.Login(ctx, player.ID, domain.ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, "never-issued"))

	_, err = svc.Refresh(ctx, pair.RefreshToken, domain.ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestRevokeAllDropsEverySession(t *testing.T) {
	ctx := context.Background()
	svc, player := newAuthService(t)

	first, err := svc.Login(ctx, player.ID, domain.ClientMeta{})
	require.NoError(t, err)
	second, err := svc.Login(ctx, player.ID, domain.ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, player.ID))

	_, err = svc.Refresh(ctx, first.RefreshToken, domain.ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidOrExpired)
	_, err = svc.Refresh(ctx, second.RefreshToken, domain.ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
	ctx := context.Background()
	svc, player := newAuthService(t)

	_, err := svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthenticated)

	// Valid token for a player that no longer exists.
	other := &tokenx.Codec{Secret: svc.Codec.Secret, Issuer: svc.Codec.Issuer}
	token, err := other.Issue("deleted-player")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrUnauthenticated)

	// Token signed with a different secret.
	wrongKey := &tokenx.Codec{Secret: []byte("other-secret-other-secret-other"), Issuer: svc.Codec.Issuer}
	token, err = wrongKey.Issue(player.ID)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
