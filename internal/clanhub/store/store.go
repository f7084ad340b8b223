package store

import (
	"context"
	"errors"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a transaction entry point for multi-row mutations that must
// be atomic (membership cascades, refresh rotation, clan deletion).
type Store interface {
	Players() Players
	Clans() Clans
	Members() Members
	Applications() Applications
	Invitations() Invitations
	Sessions() Sessions
	OAuthStates() OAuthStates

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back; otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Players interface {
	// GetPlayerByID returns a player by id.
	GetPlayerByID(ctx context.Context, id string) (domain.Player, error)

	// GetPlayerBySteamID is the lookup used during login.
	GetPlayerBySteamID(ctx context.Context, steamID string) (domain.Player, error)

	// CreatePlayer inserts a new player (id is provided by app via ULID).
	CreatePlayer(ctx context.Context, p domain.Player) error

	// UpdateLoginProfile refreshes display fields and last_login on login.
	UpdateLoginProfile(ctx context.Context, playerID, username, avatarURL string, lastLogin time.Time) error

	// LinkDiscord sets the linked Discord identity fields.
	LinkDiscord(ctx context.Context, playerID, discordID, discordUsername, discordAvatar string) error

	// SetCurrentClan updates the weak clan reference; nil clears it.
	SetCurrentClan(ctx context.Context, playerID string, clanID *string) error

	// ClearCurrentClanByClan clears current_clan_id for every player that
	// references the given clan (clan deletion cascade).
	ClearCurrentClanByClan(ctx context.Context, clanID string) error

	// ListPlayers returns all players ordered by creation date (newest first).
	ListPlayers(ctx context.Context) ([]domain.Player, error)
}

type Clans interface {
	CreateClan(ctx context.Context, c domain.Clan) error
	GetClanByID(ctx context.Context, id string) (domain.Clan, error)
	GetClanByTag(ctx context.Context, tag string) (domain.Clan, error)

	// ListClans returns all clans ordered by creation date (newest first).
	ListClans(ctx context.Context) ([]domain.Clan, error)

	// UpdateClanSettings overwrites the mutable settings fields.
	UpdateClanSettings(ctx context.Context, c domain.Clan) error

	// DeleteClan removes the clan row only; owned rows are deleted explicitly
	// by the engine before this is called.
	DeleteClan(ctx context.Context, clanID string) error
}

type Members interface {
	// CreateMember inserts a membership edge. Violating the one-membership-
	// per-player or one-row-per-(clan,player) constraint returns
	// ErrAlreadyExists.
	CreateMember(ctx context.Context, m domain.ClanMember) error

	// GetMember returns the membership for (clan, player).
	GetMember(ctx context.Context, clanID, playerID string) (domain.ClanMember, error)

	// GetMemberByPlayer returns the player's sole membership, anywhere.
	GetMemberByPlayer(ctx context.Context, playerID string) (domain.ClanMember, error)

	// ListClanMembers returns all members of a clan ordered by join date.
	ListClanMembers(ctx context.Context, clanID string) ([]domain.ClanMember, error)

	// CountOwners returns the number of members with role=owner.
	CountOwners(ctx context.Context, clanID string) (int, error)

	// UpdateMemberRole sets the role for a single membership row.
	UpdateMemberRole(ctx context.Context, memberID, role string) error

	// DemoteOwners sets role=member on every owner of the clan. Used by the
	// single-owner transfer transition.
	DemoteOwners(ctx context.Context, clanID string) error

	DeleteMember(ctx context.Context, memberID string) error
	DeleteMembersByClan(ctx context.Context, clanID string) error
}

type Applications interface {
	// CreateApplication inserts a pending application. A second pending
	// application for the same (clan, player) returns ErrAlreadyExists.
	CreateApplication(ctx context.Context, a domain.ClanApplication) error

	GetApplicationByID(ctx context.Context, id string) (domain.ClanApplication, error)

	// ListClanApplications returns applications for a clan, optionally
	// filtered by status ("" means all).
	ListClanApplications(ctx context.Context, clanID, status string) ([]domain.ClanApplication, error)

	// ListPendingByPlayer returns the player's pending applications across
	// all clans.
	ListPendingByPlayer(ctx context.Context, playerID string) ([]domain.ClanApplication, error)

	// UpdateApplicationStatus transitions a pending application to a
	// terminal status.
	UpdateApplicationStatus(ctx context.Context, id, status string) error

	// RejectPendingByPlayer marks every pending application of the player as
	// rejected (cascade on approve/accept).
	RejectPendingByPlayer(ctx context.Context, playerID string) error

	// DeleteApplication removes an application (withdraw while pending).
	DeleteApplication(ctx context.Context, id string) error

	DeleteApplicationsByClan(ctx context.Context, clanID string) error
}

type Invitations interface {
	// CreateInvitation inserts a pending invitation. A second pending
	// invitation for the same (clan, player) returns ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.ClanInvitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.ClanInvitation, error)

	// ListClanInvitations returns invitations for a clan, optionally
	// filtered by status ("" means all).
	ListClanInvitations(ctx context.Context, clanID, status string) ([]domain.ClanInvitation, error)

	// ListPendingByPlayer returns the player's pending invitations across
	// all clans.
	ListPendingByPlayer(ctx context.Context, playerID string) ([]domain.ClanInvitation, error)

	UpdateInvitationStatus(ctx context.Context, id, status string) error

	// RejectPendingByPlayer marks every pending invitation of the player as
	// rejected (cascade on approve/accept).
	RejectPendingByPlayer(ctx context.Context, playerID string) error

	// DeleteInvitation removes an invitation (owner cancel while pending).
	DeleteInvitation(ctx context.Context, id string) error

	DeleteInvitationsByClan(ctx context.Context, clanID string) error
}

type Sessions interface {
	// CreateSession stores a new refresh-token grant.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session by its token fingerprint.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// TouchSession bumps last_used.
	TouchSession(ctx context.Context, id string, lastUsed time.Time) error

	// DeleteSessionByTokenHash removes the matching session. Returns
	// ErrNotFound when no row matched; rotation relies on this to guarantee
	// exactly one winner between two racing refresh calls.
	DeleteSessionByTokenHash(ctx context.Context, hash string) error

	// DeleteSessionsByPlayer removes every session of a player.
	DeleteSessionsByPlayer(ctx context.Context, playerID string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type OAuthStates interface {
	// CreateOAuthState stores a freshly minted correlation state.
	CreateOAuthState(ctx context.Context, s domain.OAuthState) error

	// GetOAuthState fetches a state record by token and provider.
	GetOAuthState(ctx context.Context, state, provider string) (domain.OAuthState, error)

	// DeleteOAuthState removes a state record by id.
	DeleteOAuthState(ctx context.Context, id string) error

	// DeleteExpiredOAuthStates purges records past their expiry.
	DeleteExpiredOAuthStates(ctx context.Context, now time.Time) error
}
