package sqlite

import (
	"context"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, player_id, token_hash, user_agent, ip_address, created_at, expires_at, last_used`

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.PlayerID,
		&s.TokenHash,
		&s.UserAgent,
		&s.IPAddress,
		&s.CreatedAt,
		&s.ExpiresAt,
		&s.LastUsed,
	)
	if err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, player_id, token_hash, user_agent, ip_address, created_at, expires_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.PlayerID, s.TokenHash, s.UserAgent, s.IPAddress, s.CreatedAt, s.ExpiresAt, s.LastUsed,
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, hash)
	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) TouchSession(ctx context.Context, id string, lastUsed time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_used = ? WHERE id = ?`,
		lastUsed, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteSessionByTokenHash returns ErrNotFound when the row is already gone.
// Refresh rotation depends on this so that of two concurrent refreshes only
// the one whose DELETE removed the row proceeds to mint new tokens.
func (r *sessionsRepo) DeleteSessionByTokenHash(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, hash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sessionsRepo) DeleteSessionsByPlayer(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE player_id = ?`, playerID)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	return err
}
