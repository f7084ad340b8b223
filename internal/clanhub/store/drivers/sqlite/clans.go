package sqlite

import (
	"context"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

type clansRepo struct {
	db dbtx
}

const clanColumns = `id, tag, name, description, theme, banner_url, logo_url, requirements, level, winrate, created_at`

func scanClan(row interface{ Scan(...any) error }) (domain.Clan, error) {
	var c domain.Clan
	err := row.Scan(
		&c.ID,
		&c.Tag,
		&c.Name,
		&c.Description,
		&c.Theme,
		&c.BannerURL,
		&c.LogoURL,
		&c.Requirements,
		&c.Level,
		&c.Winrate,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Clan{}, err
	}
	return c, nil
}

func (r *clansRepo) CreateClan(ctx context.Context, c domain.Clan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clans (id, tag, name, description, theme, banner_url, logo_url, requirements, level, winrate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Tag, c.Name, c.Description, c.Theme, c.BannerURL, c.LogoURL, c.Requirements, c.Level, c.Winrate, c.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *clansRepo) GetClanByID(ctx context.Context, id string) (domain.Clan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clanColumns+` FROM clans WHERE id = ?`, id)
	c, err := scanClan(row)
	if err != nil {
		return domain.Clan{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clansRepo) GetClanByTag(ctx context.Context, tag string) (domain.Clan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clanColumns+` FROM clans WHERE tag = ?`, tag)
	c, err := scanClan(row)
	if err != nil {
		return domain.Clan{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clansRepo) ListClans(ctx context.Context) ([]domain.Clan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clanColumns+` FROM clans ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clans []domain.Clan
	for rows.Next() {
		c, err := scanClan(rows)
		if err != nil {
			return nil, err
		}
		clans = append(clans, c)
	}
	return clans, rows.Err()
}

func (r *clansRepo) UpdateClanSettings(ctx context.Context, c domain.Clan) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clans
		SET name = ?, description = ?, theme = ?, banner_url = ?, logo_url = ?, requirements = ?
		WHERE id = ?`,
		c.Name, c.Description, c.Theme, c.BannerURL, c.LogoURL, c.Requirements, c.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *clansRepo) DeleteClan(ctx context.Context, clanID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clans WHERE id = ?`, clanID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
