package http

import (
	"encoding/json"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
)

// View types decouple wire JSON from the domain structs so column additions
// never leak into the API by accident.

type PlayerView struct {
	ID              string     `json:"id"`
	SteamID         string     `json:"steamId"`
	Username        string     `json:"username"`
	AvatarURL       string     `json:"avatarUrl"`
	DiscordID       *string    `json:"discordId"`
	DiscordUsername *string    `json:"discordUsername"`
	DiscordAvatar   *string    `json:"discordAvatar"`
	CurrentClanID   *string    `json:"currentClanId"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLogin       *time.Time `json:"lastLogin"`
	Admin           bool       `json:"admin,omitempty"`
}

func playerView(p domain.Player, admin bool) PlayerView {
	return PlayerView{
		ID:              p.ID,
		SteamID:         p.SteamID,
		Username:        p.Username,
		AvatarURL:       p.AvatarURL,
		DiscordID:       p.DiscordID,
		DiscordUsername: p.DiscordUsername,
		DiscordAvatar:   p.DiscordAvatar,
		CurrentClanID:   p.CurrentClanID,
		CreatedAt:       p.CreatedAt,
		LastLogin:       p.LastLogin,
		Admin:           admin,
	}
}

type ClanView struct {
	ID           string          `json:"id"`
	Tag          string          `json:"tag"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Theme        string          `json:"theme"`
	BannerURL    string          `json:"bannerUrl"`
	LogoURL      string          `json:"logoUrl"`
	Requirements json.RawMessage `json:"requirements"`
	Level        int             `json:"level"`
	Winrate      float64         `json:"winrate"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func clanView(c domain.Clan) ClanView {
	requirements := json.RawMessage(c.Requirements)
	if !json.Valid(requirements) {
		requirements = json.RawMessage("{}")
	}
	return ClanView{
		ID:           c.ID,
		Tag:          c.Tag,
		Name:         c.Name,
		Description:  c.Description,
		Theme:        c.Theme,
		BannerURL:    c.BannerURL,
		LogoURL:      c.LogoURL,
		Requirements: requirements,
		Level:        c.Level,
		Winrate:      c.Winrate,
		CreatedAt:    c.CreatedAt,
	}
}

func clanViews(clans []domain.Clan) []ClanView {
	views := make([]ClanView, 0, len(clans))
	for _, c := range clans {
		views = append(views, clanView(c))
	}
	return views
}

type MemberView struct {
	ID       string    `json:"id"`
	ClanID   string    `json:"clanId"`
	PlayerID string    `json:"playerId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`

	// Advisory presence; absent when the lookup is skipped or fails.
	Online *bool `json:"online,omitempty"`
	InGame *bool `json:"inGame,omitempty"`
}

func memberView(m domain.ClanMember) MemberView {
	return MemberView{
		ID:       m.ID,
		ClanID:   m.ClanID,
		PlayerID: m.PlayerID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

type ApplicationView struct {
	ID        string    `json:"id"`
	ClanID    string    `json:"clanId"`
	PlayerID  string    `json:"playerId"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func applicationView(a domain.ClanApplication) ApplicationView {
	return ApplicationView{
		ID:        a.ID,
		ClanID:    a.ClanID,
		PlayerID:  a.PlayerID,
		Message:   a.Message,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

func applicationViews(apps []domain.ClanApplication) []ApplicationView {
	views := make([]ApplicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, applicationView(a))
	}
	return views
}

type InvitationView struct {
	ID          string    `json:"id"`
	ClanID      string    `json:"clanId"`
	PlayerID    string    `json:"playerId"`
	InvitedByID string    `json:"invitedById"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func invitationView(inv domain.ClanInvitation) InvitationView {
	return InvitationView{
		ID:          inv.ID,
		ClanID:      inv.ClanID,
		PlayerID:    inv.PlayerID,
		InvitedByID: inv.InvitedByID,
		Message:     inv.Message,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt,
	}
}

func invitationViews(invs []domain.ClanInvitation) []InvitationView {
	views := make([]InvitationView, 0, len(invs))
	for _, inv := range invs {
		views = append(views, invitationView(inv))
	}
	return views
}
