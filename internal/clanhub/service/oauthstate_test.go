package service

import (
	"context"
	"testing"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/stretchr/testify/require"
)

func newStateService(t *testing.T) (*OAuthStateService, domain.Player) {
	t.Helper()

	st := newTestStore(t)
	player := createTestPlayer(t, st, "bob")

	svc := &OAuthStateService{
		Store:          st,
		AllowedOrigins: []string{"https://hub.example"},
	}
	return svc, player
}

func TestStateConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, player := newStateService(t)

	state, err := svc.Begin(ctx, player.ID, domain.ProviderDiscord, "/settings")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	record, err := svc.Consume(ctx, state, domain.ProviderDiscord)
	require.NoError(t, err)
	require.Equal(t, player.ID, record.PlayerID)
	require.Equal(t, "/settings", record.ReturnURL)

	_, err = svc.Consume(ctx, state, domain.ProviderDiscord)
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateConsumeRejectsProviderMismatch(t *testing.T) {
	ctx := context.Background()
	svc, player := newStateService(t)

	state, err := svc.Begin(ctx, player.ID, domain.ProviderDiscord, "/")
	require.NoError(t, err)

	_, err = svc.Consume(ctx, state, domain.ProviderSteam)
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateConsumeRejectsExpired(t *testing.T) {
	ctx := context.Background()
	svc, player := newStateService(t)
	svc.StateTTL = time.Nanosecond

	state, err := svc.Begin(ctx, player.ID, domain.ProviderDiscord, "/")
	require.NoError(t, err)

	_, err = svc.Consume(ctx, state, domain.ProviderDiscord)
	require.ErrorIs(t, err, ErrStateNotFound)

	// Fail-closed also purges: the expired row is gone, not merely refused.
	_, err = svc.Store.OAuthStates().GetOAuthState(ctx, state, domain.ProviderDiscord)
	require.Error(t, err)
}

func TestStateConsumeRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStateService(t)

	_, err := svc.Consume(ctx, "never-minted", domain.ProviderDiscord)
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestBeginEnforcesReturnURLAllowList(t *testing.T) {
	ctx := context.Background()
	svc, player := newStateService(t)

	cases := []struct {
		name      string
		returnURL string
		ok        bool
	}{
		{"relative path", "/clans/123", true},
		{"allowed origin", "https://hub.example/settings", true},
		{"foreign origin", "https://evil.example/phish", false},
		{"scheme-relative", "//evil.example/phish", false},
		{"empty", "", false},
		{"bare word", "settings", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Begin(ctx, player.ID, domain.ProviderDiscord, tc.returnURL)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}
