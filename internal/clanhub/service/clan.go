package service

import (
	"context"
	"errors"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
)

// ClanService serves clan reads and settings updates. Creation and deletion
// live in MembershipService because they touch the membership graph.
type ClanService struct {
	Store store.Store
}

func (s *ClanService) GetClan(ctx context.Context, id string) (domain.Clan, error) {
	clan, err := s.Store.Clans().GetClanByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Clan{}, ErrNotFound
		}
		return domain.Clan{}, err
	}
	return clan, nil
}

func (s *ClanService) GetClanByTag(ctx context.Context, tag string) (domain.Clan, error) {
	clan, err := s.Store.Clans().GetClanByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Clan{}, ErrNotFound
		}
		return domain.Clan{}, err
	}
	return clan, nil
}

func (s *ClanService) ListClans(ctx context.Context) ([]domain.Clan, error) {
	return s.Store.Clans().ListClans(ctx)
}

// UpdateSettingsInput carries the mutable clan settings. Nil fields keep the
// current value.
type UpdateSettingsInput struct {
	Name         *string
	Description  *string
	Theme        *string
	BannerURL    *string
	LogoURL      *string
	Requirements *string
}

// UpdateSettings applies a partial settings update, owner-only.
func (s *ClanService) UpdateSettings(ctx context.Context, actor Actor, clanID string, in UpdateSettingsInput) (domain.Clan, error) {
	if in.Theme != nil && !domain.ValidTheme(*in.Theme) {
		return domain.Clan{}, ErrValidation
	}
	if in.Name != nil && *in.Name == "" {
		return domain.Clan{}, ErrValidation
	}

	var updated domain.Clan
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		clan, err := tx.Clans().GetClanByID(ctx, clanID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !actor.Admin {
			member, err := tx.Members().GetMember(ctx, clanID, actor.PlayerID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrForbidden
				}
				return err
			}
			if member.Role != domain.RoleOwner {
				return ErrForbidden
			}
		}

		if in.Name != nil {
			clan.Name = *in.Name
		}
		if in.Description != nil {
			clan.Description = *in.Description
		}
		if in.Theme != nil {
			clan.Theme = *in.Theme
		}
		if in.BannerURL != nil {
			clan.BannerURL = *in.BannerURL
		}
		if in.LogoURL != nil {
			clan.LogoURL = *in.LogoURL
		}
		if in.Requirements != nil {
			clan.Requirements = *in.Requirements
		}

		if err := tx.Clans().UpdateClanSettings(ctx, clan); err != nil {
			return err
		}
		updated = clan
		return nil
	})
	if err != nil {
		return domain.Clan{}, err
	}
	return updated, nil
}
