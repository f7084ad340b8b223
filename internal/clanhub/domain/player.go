package domain

import "time"

// Player is the identity anchor for everything in the system. A player is
// created on their first successful Steam login and never hard-deleted.
type Player struct {
	ID              string
	SteamID         string // stable external identity, unique
	Username        string
	AvatarURL       string
	DiscordID       *string // linked secondary identity, unique when present
	DiscordUsername *string
	DiscordAvatar   *string
	CurrentClanID   *string // set iff the player holds exactly one membership
	CreatedAt       time.Time
	LastLogin       *time.Time
}
