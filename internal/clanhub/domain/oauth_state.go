package domain

import "time"

// Identity-linking providers.
const (
	ProviderDiscord = "discord"
	ProviderSteam   = "steam"
)

// OAuthState is a single-use CSRF correlation record binding a third-party
// linking callback to the player that initiated the flow. It is consumed
// (deleted) exactly once; expired records fail closed.
type OAuthState struct {
	ID        string
	State     string // random token, unique
	PlayerID  string
	Provider  string
	ReturnURL string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the state is past its expiry at now.
func (s OAuthState) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
