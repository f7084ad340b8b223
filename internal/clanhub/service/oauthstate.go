package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/pkg/cryptox"
	"github.com/squadcommunity/clanhub/pkg/idx"
)

const DefaultStateTTL = 10 * time.Minute

// OAuthStateService mints and consumes single-use CSRF correlation states
// for the Discord linking flow.
type OAuthStateService struct {
	Store    store.Store
	StateTTL time.Duration

	// AllowedOrigins is the set of origins return URLs may point at. Empty
	// means relative paths only.
	AllowedOrigins []string
}

func (s *OAuthStateService) stateTTL() time.Duration {
	if s.StateTTL > 0 {
		return s.StateTTL
	}
	return DefaultStateTTL
}

// Begin stores a fresh state bound to the player and provider. The return
// URL is validated here, at flow start, so a tampered callback can never
// redirect off-site.
func (s *OAuthStateService) Begin(ctx context.Context, playerID, provider, returnURL string) (string, error) {
	if !s.allowedReturnURL(returnURL) {
		return "", ErrValidation
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := domain.OAuthState{
		ID:        idx.New().String(),
		State:     state,
		PlayerID:  playerID,
		Provider:  provider,
		ReturnURL: returnURL,
		CreatedAt: now,
		ExpiresAt: now.Add(s.stateTTL()),
	}
	if err := s.Store.OAuthStates().CreateOAuthState(ctx, record); err != nil {
		return "", err
	}
	return state, nil
}

// Consume fetches and deletes a state in one transaction. A state can be
// consumed at most once; expired states are deleted on sight.
func (s *OAuthStateService) Consume(ctx context.Context, state, provider string) (domain.OAuthState, error) {
	now := time.Now()

	// Opportunistic purge keeps the table small without waiting for the
	// housekeeping tick.
	_ = s.Store.OAuthStates().DeleteExpiredOAuthStates(ctx, now)

	// An expired state still gets its delete committed, so the expiry
	// verdict is carried out of the tx rather than returned from it.
	var record domain.OAuthState
	var expired bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		found, err := tx.OAuthStates().GetOAuthState(ctx, state, provider)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrStateNotFound
			}
			return err
		}
		if err := tx.OAuthStates().DeleteOAuthState(ctx, found.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrStateNotFound
			}
			return err
		}
		if found.Expired(now) {
			expired = true
			return nil
		}
		record = found
		return nil
	})
	if err != nil {
		return domain.OAuthState{}, err
	}
	if expired {
		return domain.OAuthState{}, ErrStateNotFound
	}
	return record, nil
}

func (s *OAuthStateService) allowedReturnURL(returnURL string) bool {
	if returnURL == "" {
		return false
	}

	u, err := url.Parse(returnURL)
	if err != nil {
		return false
	}

	// Relative paths stay on-site by definition. Scheme-relative URLs
	// ("//evil.com") have a host and fall through to the origin check.
	if u.Scheme == "" && u.Host == "" {
		return len(returnURL) > 0 && returnURL[0] == '/'
	}

	origin := u.Scheme + "://" + u.Host
	for _, allowed := range s.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
