package sqlite

import (
	"context"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type membersRepo struct {
	db dbtx
}

const memberColumns = `id, clan_id, player_id, role, stats_snapshot, joined_at`

func scanMember(row interface{ Scan(...any) error }) (domain.ClanMember, error) {
	var m domain.ClanMember
	err := row.Scan(
		&m.ID,
		&m.ClanID,
		&m.PlayerID,
		&m.Role,
		&m.StatsSnapshot,
		&m.JoinedAt,
	)
	if err != nil {
		return domain.ClanMember{}, err
	}
	return m, nil
}

func (r *membersRepo) CreateMember(ctx context.Context, m domain.ClanMember) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clan_members (id, clan_id, player_id, role, stats_snapshot, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ClanID, m.PlayerID, m.Role, m.StatsSnapshot, m.JoinedAt,
	)
	return mapConstraint(err)
}

func (r *membersRepo) GetMember(ctx context.Context, clanID, playerID string) (domain.ClanMember, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM clan_members WHERE clan_id = ? AND player_id = ?`,
		clanID, playerID,
	)
	m, err := scanMember(row)
	if err != nil {
		return domain.ClanMember{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) GetMemberByPlayer(ctx context.Context, playerID string) (domain.ClanMember, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM clan_members WHERE player_id = ?`,
		playerID,
	)
	m, err := scanMember(row)
	if err != nil {
		return domain.ClanMember{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) ListClanMembers(ctx context.Context, clanID string) ([]domain.ClanMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM clan_members WHERE clan_id = ? ORDER BY joined_at ASC`,
		clanID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.ClanMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membersRepo) CountOwners(ctx context.Context, clanID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM clan_members WHERE clan_id = ? AND role = 'owner'`,
		clanID,
	).Scan(&n)
	return n, err
}

func (r *membersRepo) UpdateMemberRole(ctx context.Context, memberID, role string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clan_members SET role = ? WHERE id = ?`,
		role, memberID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *membersRepo) DemoteOwners(ctx context.Context, clanID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE clan_members SET role = 'member' WHERE clan_id = ? AND role = 'owner'`,
		clanID,
	)
	return err
}

func (r *membersRepo) DeleteMember(ctx context.Context, memberID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clan_members WHERE id = ?`, memberID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *membersRepo) DeleteMembersByClan(ctx context.Context, clanID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clan_members WHERE clan_id = ?`, clanID)
	return err
}
