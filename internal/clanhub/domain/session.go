package domain

import "time"

// Session is a refresh-token grant. Only the SHA-256 fingerprint of the
// opaque refresh token is persisted; the raw value is returned to the client
// once and never stored.
type Session struct {
	ID        string
	PlayerID  string
	TokenHash string // fingerprint (base64url SHA-256) of the opaque token
	UserAgent string // diagnostic only
	IPAddress string // diagnostic only
	CreatedAt time.Time
	ExpiresAt time.Time
	LastUsed  time.Time
}

// Expired reports whether the session is past its expiry horizon at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// TokenPair is what the auth endpoints return: the short-lived access token
// (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime in seconds
}

// ClientMeta carries diagnostic request metadata recorded on sessions.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}
