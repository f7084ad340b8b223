package sqlite

import (
	"context"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, clan_id, player_id, invited_by_id, message, status, created_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.ClanInvitation, error) {
	var inv domain.ClanInvitation
	err := row.Scan(
		&inv.ID,
		&inv.ClanID,
		&inv.PlayerID,
		&inv.InvitedByID,
		&inv.Message,
		&inv.Status,
		&inv.CreatedAt,
	)
	if err != nil {
		return domain.ClanInvitation{}, err
	}
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.ClanInvitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clan_invitations (id, clan_id, player_id, invited_by_id, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ClanID, inv.PlayerID, inv.InvitedByID, inv.Message, inv.Status, inv.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.ClanInvitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM clan_invitations WHERE id = ?`, id)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.ClanInvitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) ListClanInvitations(ctx context.Context, clanID, status string) ([]domain.ClanInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM clan_invitations WHERE clan_id = ?`
	args := []any{clanID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.ClanInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationsRepo) ListPendingByPlayer(ctx context.Context, playerID string) ([]domain.ClanInvitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM clan_invitations
		WHERE player_id = ? AND status = 'pending'
		ORDER BY created_at DESC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.ClanInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationsRepo) UpdateInvitationStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clan_invitations SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) RejectPendingByPlayer(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE clan_invitations SET status = 'rejected' WHERE player_id = ? AND status = 'pending'`,
		playerID,
	)
	return err
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clan_invitations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) DeleteInvitationsByClan(ctx context.Context, clanID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clan_invitations WHERE clan_id = ?`, clanID)
	return err
}
