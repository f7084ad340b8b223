package service

import (
	"context"
	"testing"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/internal/clanhub/store/drivers/sqlite"
	"github.com/squadcommunity/clanhub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createTestPlayer(t *testing.T, st store.Store, username string) domain.Player {
	t.Helper()

	player := domain.Player{
		ID:        idx.New().String(),
		SteamID:   "7656119" + idx.New().String()[16:],
		Username:  username,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.Players().CreatePlayer(context.Background(), player))
	return player
}

func createTestClan(t *testing.T, svc *MembershipService, owner domain.Player, tag string) domain.Clan {
	t.Helper()

	clan, err := svc.CreateClan(context.Background(), Actor{PlayerID: owner.ID}, CreateClanInput{
		Tag:  tag,
		Name: tag + " clan",
	})
	require.NoError(t, err)
	return clan
}
