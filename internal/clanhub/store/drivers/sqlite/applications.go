package sqlite

import (
	"context"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type applicationsRepo struct {
	db dbtx
}

const applicationColumns = `id, clan_id, player_id, message, status, stats_snapshot, created_at`

func scanApplication(row interface{ Scan(...any) error }) (domain.ClanApplication, error) {
	var a domain.ClanApplication
	err := row.Scan(
		&a.ID,
		&a.ClanID,
		&a.PlayerID,
		&a.Message,
		&a.Status,
		&a.StatsSnapshot,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.ClanApplication{}, err
	}
	return a, nil
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.ClanApplication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clan_applications (id, clan_id, player_id, message, status, stats_snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ClanID, a.PlayerID, a.Message, a.Status, a.StatsSnapshot, a.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id string) (domain.ClanApplication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM clan_applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if err != nil {
		return domain.ClanApplication{}, mapNotFound(err)
	}
	return a, nil
}

func (r *applicationsRepo) ListClanApplications(ctx context.Context, clanID, status string) ([]domain.ClanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM clan_applications WHERE clan_id = ?`
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

	var apps []domain.ClanApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationsRepo) ListPendingByPlayer(ctx context.Context, playerID string) ([]domain.ClanApplication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM clan_applications
		WHERE player_id = ? AND status = 'pending'
		ORDER BY created_at DESC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.ClanApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationsRepo) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clan_applications SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *applicationsRepo) RejectPendingByPlayer(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE clan_applications SET status = 'rejected' WHERE player_id = ? AND status = 'pending'`,
		playerID,
	)
	return err
}

func (r *applicationsRepo) DeleteApplication(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clan_applications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *applicationsRepo) DeleteApplicationsByClan(ctx context.Context, clanID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clan_applications WHERE clan_id = ?`, clanID)
	return err
}
