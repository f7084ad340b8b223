package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type playersRepo struct {
	db dbtx
}

const playerColumns = `id, steam_id, username, avatar_url, discord_id, discord_username, discord_avatar, current_clan_id, created_at, last_login`

func scanPlayer(row interface{ Scan(...any) error }) (domain.Player, error) {
	var (
		p               domain.Player
		discordID       sql.NullString
		discordUsername sql.NullString
		discordAvatar   sql.NullString
		currentClanID   sql.NullString
		lastLogin       sql.NullTime
	)
	err := row.Scan(
		&p.ID,
		&p.SteamID,
		&p.Username,
		&p.AvatarURL,
		&discordID,
		&discordUsername,
		&discordAvatar,
		&currentClanID,
		&p.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		return domain.Player{}, err
	}
	p.DiscordID = mapNullStringPtr(discordID)
	p.DiscordUsername = mapNullStringPtr(discordUsername)
	p.DiscordAvatar = mapNullStringPtr(discordAvatar)
	p.CurrentClanID = mapNullStringPtr(currentClanID)
	p.LastLogin = mapNullTimePtr(lastLogin)
	return p, nil
}

func (r *playersRepo) GetPlayerByID(ctx context.Context, id string) (domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err != nil {
		return domain.Player{}, mapNotFound(err)
	}
	return p, nil
}

func (r *playersRepo) GetPlayerBySteamID(ctx context.Context, steamID string) (domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE steam_id = ?`, steamID)
	p, err := scanPlayer(row)
	if err != nil {
		return domain.Player{}, mapNotFound(err)
	}
	return p, nil
}

func (r *playersRepo) CreatePlayer(ctx context.Context, p domain.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, steam_id, username, avatar_url, discord_id, discord_username, discord_avatar, current_clan_id, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.SteamID,
		p.Username,
		p.AvatarURL,
		mapOptionalString(p.DiscordID),
		mapOptionalString(p.DiscordUsername),
		mapOptionalString(p.DiscordAvatar),
		mapOptionalString(p.CurrentClanID),
		p.CreatedAt,
		mapOptionalTime(p.LastLogin),
	)
	return mapConstraint(err)
}

func (r *playersRepo) UpdateLoginProfile(ctx context.Context, playerID, username, avatarURL string, lastLogin time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET username = ?, avatar_url = ?, last_login = ? WHERE id = ?`,
		username, avatarURL, lastLogin, playerID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *playersRepo) LinkDiscord(ctx context.Context, playerID, discordID, discordUsername, discordAvatar string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET discord_id = ?, discord_username = ?, discord_avatar = ? WHERE id = ?`,
		discordID, discordUsername, discordAvatar, playerID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *playersRepo) SetCurrentClan(ctx context.Context, playerID string, clanID *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET current_clan_id = ? WHERE id = ?`,
		mapOptionalString(clanID), playerID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *playersRepo) ClearCurrentClanByClan(ctx context.Context, clanID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET current_clan_id = NULL WHERE current_clan_id = ?`,
		clanID,
	)
	return err
}

func (r *playersRepo) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// requireRow maps a zero-rows-affected update to ErrNotFound so callers can
// distinguish a missing row from a silent no-op.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
