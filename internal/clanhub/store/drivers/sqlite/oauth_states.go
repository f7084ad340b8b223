package sqlite

import (
	"context"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type oauthStatesRepo struct {
	db dbtx
}

const oauthStateColumns = `id, state, player_id, provider, return_url, created_at, expires_at`

func scanOAuthState(row interface{ Scan(...any) error }) (domain.OAuthState, error) {
	var s domain.OAuthState
	err := row.Scan(
		&s.ID,
		&s.State,
		&s.PlayerID,
		&s.Provider,
		&s.ReturnURL,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		return domain.OAuthState{}, err
	}
	return s, nil
}

func (r *oauthStatesRepo) CreateOAuthState(ctx context.Context, s domain.OAuthState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_states (id, state, player_id, provider, return_url, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.State, s.PlayerID, s.Provider, s.ReturnURL, s.CreatedAt, s.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *oauthStatesRepo) GetOAuthState(ctx context.Context, state, provider string) (domain.OAuthState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+oauthStateColumns+` FROM oauth_states WHERE state = ? AND provider = ?`,
		state, provider,
	)
	s, err := scanOAuthState(row)
	if err != nil {
		return domain.OAuthState{}, mapNotFound(err)
	}
	return s, nil
}

func (r *oauthStatesRepo) DeleteOAuthState(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *oauthStatesRepo) DeleteExpiredOAuthStates(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at <= ?`, now)
	return err
}
