package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/pkg/idx"
	"github.com/squadcommunity/clanhub/pkg/slogx"
)

// Actor identifies who is performing a membership operation. Admin actors
// bypass the owner-only checks.
type Actor struct {
	PlayerID string
	Admin    bool
}

// MembershipService is the single writer for the membership graph. Every
// operation runs in one transaction so the invariants hold at commit:
// a player has at most one membership, current_clan_id mirrors it, and every
// clan keeps a non-empty owner set.
type MembershipService struct {
	Store store.Store
}

// CreateClanInput carries the caller-controlled clan fields.
type CreateClanInput struct {
	Tag          string
	Name         string
	Description  string
	Theme        string
	Requirements string
}

// CreateClan creates the clan and its founding owner membership atomically.
// The creator must not already belong to a clan.
func (s *MembershipService) CreateClan(ctx context.Context, actor Actor, in CreateClanInput) (domain.Clan, error) {
	if in.Tag == "" || in.Name == "" {
		return domain.Clan{}, ErrValidation
	}
	if in.Theme == "" {
		in.Theme = domain.ThemeOrange
	}
	if !domain.ValidTheme(in.Theme) {
		return domain.Clan{}, ErrValidation
	}
	if in.Requirements == "" {
		in.Requirements = "{}"
	}

	now := time.Now()
	clan := domain.Clan{
		ID:           idx.New().String(),
		Tag:          in.Tag,
		Name:         in.Name,
		Description:  in.Description,
		Theme:        in.Theme,
		Requirements: in.Requirements,
		Level:        1,
		CreatedAt:    now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Members().GetMemberByPlayer(ctx, actor.PlayerID); err == nil {
			return ErrAlreadyInClan
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Clans().CreateClan(ctx, clan); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrConflict
			}
			return err
		}

		return s.addMember(ctx, tx, clan.ID, actor.PlayerID, domain.RoleOwner, now)
	})
	if err != nil {
		return domain.Clan{}, err
	}

	slogx.FromContext(ctx).Info("clan created",
		slog.String("clan_id", clan.ID),
		slog.String("tag", clan.Tag),
		slog.String("owner_id", actor.PlayerID),
	)
	return clan, nil
}

// Join admits the actor directly as a regular member. The actor must be
// clanless; the unique membership constraint settles concurrent joins.
func (s *MembershipService) Join(ctx context.Context, actor Actor, clanID string) error {
	now := time.Now()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Clans().GetClanByID(ctx, clanID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, err := tx.Members().GetMemberByPlayer(ctx, actor.PlayerID); err == nil {
			return ErrAlreadyInClan
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return s.addMember(ctx, tx, clanID, actor.PlayerID, domain.RoleMember, now)
	})
}

// Leave removes the actor's membership. Owners must transfer ownership
// first; a clan never loses its last owner through Leave.
func (s *MembershipService) Leave(ctx context.Context, actor Actor, clanID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		member, err := tx.Members().GetMember(ctx, clanID, actor.PlayerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if member.Role == domain.RoleOwner {
			return ErrOwnerMustTransfer
		}

		if err := tx.Members().DeleteMember(ctx, member.ID); err != nil {
			return err
		}
		return tx.Players().SetCurrentClan(ctx, actor.PlayerID, nil)
	})
}

// Apply files a pending application. The applicant must be clanless and may
// hold at most one pending application per clan.
func (s *MembershipService) Apply(ctx context.Context, actor Actor, clanID, message string) (domain.ClanApplication, error) {
	now := time.Now()
	app := domain.ClanApplication{
		ID:            idx.New().String(),
		ClanID:        clanID,
		PlayerID:      actor.PlayerID,
		Message:       message,
		Status:        domain.StatusPending,
		StatsSnapshot: "{}",
		CreatedAt:     now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Clans().GetClanByID(ctx, clanID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, err := tx.Members().GetMemberByPlayer(ctx, actor.PlayerID); err == nil {
			return ErrAlreadyInClan
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Applications().CreateApplication(ctx, app); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicatePending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ClanApplication{}, err
	}
	return app, nil
}

// ApproveApplication accepts a pending application and admits the applicant.
// If the applicant joined another clan in the meantime the application is
// auto-rejected instead of approved.
func (s *MembershipService) ApproveApplication(ctx context.Context, actor Actor, applicationID string) error {
	now := time.Now()

	// The auto-reject must commit even though the call fails, so it is
	// signalled out of the tx instead of returned from it.
	var autoRejected bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		app, err := tx.Applications().GetApplicationByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if app.Status != domain.StatusPending {
			return ErrConflict
		}
		if err := s.requireOwner(ctx, tx, actor, app.ClanID); err != nil {
			return err
		}

		// The applicant may have been admitted elsewhere while this
		// application sat pending.
		if _, err := tx.Members().GetMemberByPlayer(ctx, app.PlayerID); err == nil {
			autoRejected = true
			return tx.Applications().UpdateApplicationStatus(ctx, app.ID, domain.StatusRejected)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Applications().UpdateApplicationStatus(ctx, app.ID, domain.StatusAccepted); err != nil {
			return err
		}
		return s.addMember(ctx, tx, app.ClanID, app.PlayerID, domain.RoleMember, now)
	})
	if err != nil {
		return err
	}
	if autoRejected {
		return ErrAlreadyInClan
	}
	return nil
}

// RejectApplication marks a pending application rejected.
func (s *MembershipService) RejectApplication(ctx context.Context, actor Actor, applicationID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		app, err := tx.Applications().GetApplicationByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if app.Status != domain.StatusPending {
			return ErrConflict
		}
		if err := s.requireOwner(ctx, tx, actor, app.ClanID); err != nil {
			return err
		}
		return tx.Applications().UpdateApplicationStatus(ctx, app.ID, domain.StatusRejected)
	})
}

// WithdrawApplication lets the applicant delete their own pending
// application.
func (s *MembershipService) WithdrawApplication(ctx context.Context, actor Actor, applicationID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		app, err := tx.Applications().GetApplicationByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if app.PlayerID != actor.PlayerID {
			return ErrForbidden
		}
		if app.Status != domain.StatusPending {
			return ErrConflict
		}
		return tx.Applications().DeleteApplication(ctx, app.ID)
	})
}

// Invite files a pending invitation from an owner to a clanless player.
func (s *MembershipService) Invite(ctx context.Context, actor Actor, clanID, playerID, message string) (domain.ClanInvitation, error) {
	now := time.Now()
	inv := domain.ClanInvitation{
		ID:          idx.New().String(),
		ClanID:      clanID,
		PlayerID:    playerID,
		InvitedByID: actor.PlayerID,
		Message:     message,
		Status:      domain.StatusPending,
		CreatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, actor, clanID); err != nil {
			return err
		}
		if _, err := tx.Players().GetPlayerByID(ctx, playerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, err := tx.Members().GetMemberByPlayer(ctx, playerID); err == nil {
			return ErrAlreadyInClan
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicatePending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ClanInvitation{}, err
	}
	return inv, nil
}

// AcceptInvitation admits the invited player. If they joined another clan in
// the meantime the invitation is auto-rejected.
func (s *MembershipService) AcceptInvitation(ctx context.Context, actor Actor, invitationID string) error {
	now := time.Now()

	// Same shape as ApproveApplication: the auto-reject has to outlive the
	// failed call, so it commits and the conflict is returned afterwards.
	var autoRejected bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.PlayerID != actor.PlayerID {
			return ErrForbidden
		}
		if inv.Status != domain.StatusPending {
			return ErrConflict
		}

		if _, err := tx.Members().GetMemberByPlayer(ctx, inv.PlayerID); err == nil {
			autoRejected = true
			return tx.Invitations().UpdateInvitationStatus(ctx, inv.ID, domain.StatusRejected)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Invitations().UpdateInvitationStatus(ctx, inv.ID, domain.StatusAccepted); err != nil {
			return err
		}
		return s.addMember(ctx, tx, inv.ClanID, inv.PlayerID, domain.RoleMember, now)
	})
	if err != nil {
		return err
	}
	if autoRejected {
		return ErrAlreadyInClan
	}
	return nil
}

// RejectInvitation lets the invited player decline.
func (s *MembershipService) RejectInvitation(ctx context.Context, actor Actor, invitationID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.PlayerID != actor.PlayerID {
			return ErrForbidden
		}
		if inv.Status != domain.StatusPending {
			return ErrConflict
		}
		return tx.Invitations().UpdateInvitationStatus(ctx, inv.ID, domain.StatusRejected)
	})
}

// CancelInvitation lets a clan owner retract a pending invitation.
func (s *MembershipService) CancelInvitation(ctx context.Context, actor Actor, invitationID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.Status != domain.StatusPending {
			return ErrConflict
		}
		if err := s.requireOwner(ctx, tx, actor, inv.ClanID); err != nil {
			return err
		}
		return tx.Invitations().DeleteInvitation(ctx, inv.ID)
	})
}

// Kick removes a member from the clan. Owners cannot be kicked; demote them
// first.
func (s *MembershipService) Kick(ctx context.Context, actor Actor, clanID, playerID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, actor, clanID); err != nil {
			return err
		}

		member, err := tx.Members().GetMember(ctx, clanID, playerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if member.Role == domain.RoleOwner {
			return ErrForbidden
		}

		if err := tx.Members().DeleteMember(ctx, member.ID); err != nil {
			return err
		}
		return tx.Players().SetCurrentClan(ctx, playerID, nil)
	})
}

// ChangeRole sets a member's role. Promoting to owner is an ownership
// transfer: every current owner is demoted in the same transaction, so the
// clan always has exactly one owner afterwards. Demoting the sole owner is
// refused.
func (s *MembershipService) ChangeRole(ctx context.Context, actor Actor, clanID, playerID, role string) error {
	if !domain.ValidRole(role) {
		return ErrValidation
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, actor, clanID); err != nil {
			return err
		}
		return s.setRole(ctx, tx, clanID, playerID, role)
	})
}

// AssignOwner is the admin path for ownership transfer. It skips the
// owner-only check so support staff can recover clans whose owner is gone.
func (s *MembershipService) AssignOwner(ctx context.Context, actor Actor, clanID, playerID string) error {
	if !actor.Admin {
		return ErrForbidden
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return s.setRole(ctx, tx, clanID, playerID, domain.RoleOwner)
	})
}

// DeleteClan removes the clan and everything hanging off it. Cascades are
// explicit so the weak current_clan_id references are cleared in the same
// transaction.
func (s *MembershipService) DeleteClan(ctx context.Context, actor Actor, clanID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, actor, clanID); err != nil {
			return err
		}

		if err := tx.Players().ClearCurrentClanByClan(ctx, clanID); err != nil {
			return err
		}
		if err := tx.Members().DeleteMembersByClan(ctx, clanID); err != nil {
			return err
		}
		if err := tx.Applications().DeleteApplicationsByClan(ctx, clanID); err != nil {
			return err
		}
		if err := tx.Invitations().DeleteInvitationsByClan(ctx, clanID); err != nil {
			return err
		}

		if err := tx.Clans().DeleteClan(ctx, clanID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("clan deleted",
		slog.String("clan_id", clanID),
		slog.String("actor_id", actor.PlayerID),
	)
	return nil
}

// ListMembers returns the clan roster.
func (s *MembershipService) ListMembers(ctx context.Context, clanID string) ([]domain.ClanMember, error) {
	if _, err := s.Store.Clans().GetClanByID(ctx, clanID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Store.Members().ListClanMembers(ctx, clanID)
}

// ListApplications returns a clan's applications, owner-only.
func (s *MembershipService) ListApplications(ctx context.Context, actor Actor, clanID, status string) ([]domain.ClanApplication, error) {
	if err := s.requireOwnerDirect(ctx, actor, clanID); err != nil {
		return nil, err
	}
	return s.Store.Applications().ListClanApplications(ctx, clanID, status)
}

// ListInvitations returns a clan's invitations, owner-only.
func (s *MembershipService) ListInvitations(ctx context.Context, actor Actor, clanID, status string) ([]domain.ClanInvitation, error) {
	if err := s.requireOwnerDirect(ctx, actor, clanID); err != nil {
		return nil, err
	}
	return s.Store.Invitations().ListClanInvitations(ctx, clanID, status)
}

// ListMyApplications returns the actor's pending applications.
func (s *MembershipService) ListMyApplications(ctx context.Context, actor Actor) ([]domain.ClanApplication, error) {
	return s.Store.Applications().ListPendingByPlayer(ctx, actor.PlayerID)
}

// ListMyInvitations returns the actor's pending invitations.
func (s *MembershipService) ListMyInvitations(ctx context.Context, actor Actor) ([]domain.ClanInvitation, error) {
	return s.Store.Invitations().ListPendingByPlayer(ctx, actor.PlayerID)
}

// addMember creates the membership edge, mirrors it onto current_clan_id and
// rejects every other pending application and invitation the player holds.
// Must run inside a transaction.
func (s *MembershipService) addMember(ctx context.Context, tx store.Tx, clanID, playerID, role string, now time.Time) error {
	member := domain.ClanMember{
		ID:            idx.New().String(),
		ClanID:        clanID,
		PlayerID:      playerID,
		Role:          role,
		StatsSnapshot: "{}",
		JoinedAt:      now,
	}
	if err := tx.Members().CreateMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyInClan
		}
		return err
	}
	if err := tx.Players().SetCurrentClan(ctx, playerID, &clanID); err != nil {
		return err
	}

	if err := tx.Applications().RejectPendingByPlayer(ctx, playerID); err != nil {
		return err
	}
	return tx.Invitations().RejectPendingByPlayer(ctx, playerID)
}

// setRole applies the single-owner transfer semantics. Must run inside a
// transaction.
func (s *MembershipService) setRole(ctx context.Context, tx store.Tx, clanID, playerID, role string) error {
	member, err := tx.Members().GetMember(ctx, clanID, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if role == domain.RoleOwner {
		if err := tx.Members().DemoteOwners(ctx, clanID); err != nil {
			return err
		}
		return tx.Members().UpdateMemberRole(ctx, member.ID, domain.RoleOwner)
	}

	if member.Role == domain.RoleOwner {
		owners, err := tx.Members().CountOwners(ctx, clanID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrSoleOwner
		}
	}
	return tx.Members().UpdateMemberRole(ctx, member.ID, role)
}

// requireOwner checks the actor is an owner of the clan, admins excepted.
func (s *MembershipService) requireOwner(ctx context.Context, tx store.Tx, actor Actor, clanID string) error {
	if actor.Admin {
		return nil
	}
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
	return nil
}

func (s *MembershipService) requireOwnerDirect(ctx context.Context, actor Actor, clanID string) error {
	if actor.Admin {
		return nil
	}
	member, err := s.Store.Members().GetMember(ctx, clanID, actor.PlayerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if member.Role != domain.RoleOwner {
		return ErrForbidden
	}
	return nil
}
