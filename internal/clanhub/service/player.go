package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/pkg/idx"
	"github.com/squadcommunity/clanhub/pkg/slogx"
)

// PlayerService owns the player lifecycle: upsert on Steam login, Discord
// identity linking and profile reads.
type PlayerService struct {
	Store store.Store
}

// SteamProfile is the subset of the Steam player summary we persist.
type SteamProfile struct {
	SteamID   string
	Username  string
	AvatarURL string
}

// UpsertOnLogin creates the player on first Steam login and refreshes the
// display fields and last_login on every subsequent one.
func (s *PlayerService) UpsertOnLogin(ctx context.Context, profile SteamProfile) (domain.Player, error) {
	if profile.SteamID == "" {
		return domain.Player{}, ErrValidation
	}
	now := time.Now()

	player, err := s.Store.Players().GetPlayerBySteamID(ctx, profile.SteamID)
	switch {
	case err == nil:
		if err := s.Store.Players().UpdateLoginProfile(ctx, player.ID, profile.Username, profile.AvatarURL, now); err != nil {
			return domain.Player{}, err
		}
		player.Username = profile.Username
		player.AvatarURL = profile.AvatarURL
		player.LastLogin = &now
		return player, nil

	case errors.Is(err, store.ErrNotFound):
		player = domain.Player{
			ID:        idx.New().String(),
			SteamID:   profile.SteamID,
			Username:  profile.Username,
			AvatarURL: profile.AvatarURL,
			CreatedAt: now,
			LastLogin: &now,
		}
		if err := s.Store.Players().CreatePlayer(ctx, player); err != nil {
			// Two first logins racing; the constraint picked a winner, use it.
			if errors.Is(err, store.ErrAlreadyExists) {
				return s.Store.Players().GetPlayerBySteamID(ctx, profile.SteamID)
			}
			return domain.Player{}, err
		}
		slogx.FromContext(ctx).Info("player created",
			slog.String("player_id", player.ID),
			slog.String("steam_id", player.SteamID),
		)
		return player, nil

	default:
		return domain.Player{}, err
	}
}

// DiscordProfile is the subset of the Discord /users/@me response we persist.
type DiscordProfile struct {
	ID       string
	Username string
	Avatar   string
}

// LinkDiscord attaches a Discord identity to the player. A Discord account
// can be linked to at most one player.
func (s *PlayerService) LinkDiscord(ctx context.Context, playerID string, profile DiscordProfile) error {
	if profile.ID == "" {
		return ErrValidation
	}

	err := s.Store.Players().LinkDiscord(ctx, playerID, profile.ID, profile.Username, profile.Avatar)
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrConflict
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *PlayerService) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	player, err := s.Store.Players().GetPlayerByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Player{}, ErrNotFound
		}
		return domain.Player{}, err
	}
	return player, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.Store.Players().ListPlayers(ctx)
}
