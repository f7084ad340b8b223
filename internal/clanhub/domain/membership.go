package domain

import "time"

// Membership roles. A clan with at least one member always has at least one
// owner; the membership engine refuses any transition that would empty the
// owner set.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ValidRole reports whether role is a known membership role.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

// Pending-path statuses shared by applications and invitations.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// ClanMember is the membership edge, unique per (clan, player). A player
// holds at most one membership system-wide.
type ClanMember struct {
	ID            string
	ClanID        string
	PlayerID      string
	Role          string
	StatsSnapshot string // JSON snapshot taken at join time
	JoinedAt      time.Time
}

// ClanApplication is a player-initiated request to join a clan. At most one
// pending application exists per (clan, player).
type ClanApplication struct {
	ID            string
	ClanID        string
	PlayerID      string
	Message       string
	Status        string
	StatsSnapshot string
	CreatedAt     time.Time
}

// ClanInvitation is an owner-initiated offer to a player, the mirror image
// of an application with the initiating side reversed.
type ClanInvitation struct {
	ID          string
	ClanID      string
	PlayerID    string
	InvitedByID string
	Message     string
	Status      string
	CreatedAt   time.Time
}
