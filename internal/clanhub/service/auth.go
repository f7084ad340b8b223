package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/pkg/cryptox"
	"github.com/squadcommunity/clanhub/pkg/idx"
	"github.com/squadcommunity/clanhub/pkg/slogx"
	"github.com/squadcommunity/clanhub/pkg/tokenx"
)

const DefaultRefreshTTL = 30 * 24 * time.Hour

// AuthService mints and rotates token pairs. Access tokens are stateless
// JWTs; refresh tokens are opaque random values stored only as SHA-256
// fingerprints.
type AuthService struct {
	Codec      *tokenx.Codec
	Store      store.Store
	RefreshTTL time.Duration
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

// Login issues a fresh token pair for an already-verified player and records
// the session. Identity verification happens upstream (Steam OpenID).
func (s *AuthService) Login(ctx context.Context, playerID string, meta domain.ClientMeta) (domain.TokenPair, error) {
	now := time.Now()

	access, err := s.Codec.Issue(playerID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, err
	}

	session := domain.Session{
		ID:        idx.New().String(),
		PlayerID:  playerID,
		TokenHash: cryptox.FingerprintToken(refresh),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL()),
		LastUsed:  now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Info("session created",
		slog.String("player_id", playerID),
		slog.String("session_id", session.ID),
	)

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.Codec.AccessTTL().Seconds()),
	}, nil
}

// Refresh rotates a refresh token. The old session row is deleted and a new
// one inserted in a single transaction; the delete doubles as the race guard,
// so of two concurrent refreshes with the same token exactly one succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta domain.ClientMeta) (domain.TokenPair, error) {
	now := time.Now()
	hash := cryptox.FingerprintToken(refreshToken)

	var pair domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		session, err := tx.Sessions().GetSessionByTokenHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpired
			}
			return err
		}
		if session.Expired(now) {
			_ = tx.Sessions().DeleteSessionByTokenHash(ctx, hash)
			return ErrInvalidOrExpired
		}

		if err := tx.Sessions().DeleteSessionByTokenHash(ctx, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpired
			}
			return err
		}

		access, err := s.Codec.Issue(session.PlayerID)
		if err != nil {
			return err
		}
		refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}

		next := domain.Session{
			ID:        idx.New().String(),
			PlayerID:  session.PlayerID,
			TokenHash: cryptox.FingerprintToken(refresh),
			UserAgent: meta.UserAgent,
			IPAddress: meta.IPAddress,
			CreatedAt: now,
			ExpiresAt: now.Add(s.refreshTTL()),
			LastUsed:  now,
		}
		if err := tx.Sessions().CreateSession(ctx, next); err != nil {
			return err
		}

		pair = domain.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(s.Codec.AccessTTL().Seconds()),
		}
		return nil
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

// Revoke deletes the session matching the refresh token. Revoking an unknown
// token is not an error.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	hash := cryptox.FingerprintToken(refreshToken)
	err := s.Store.Sessions().DeleteSessionByTokenHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// RevokeAll deletes every session of the player.
func (s *AuthService) RevokeAll(ctx context.Context, playerID string) error {
	return s.Store.Sessions().DeleteSessionsByPlayer(ctx, playerID)
}

// Authenticate verifies an access token and loads its player. Every failure
// mode collapses into ErrUnauthenticated so callers cannot probe for which
// part failed.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.Player, error) {
	playerID, err := s.Codec.Verify(accessToken)
	if err != nil {
		return domain.Player{}, ErrUnauthenticated
	}

	player, err := s.Store.Players().GetPlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Player{}, ErrUnauthenticated
		}
		return domain.Player{}, err
	}
	return player, nil
}
