// Package tokenx implements the stateless access-token codec. Tokens are
// short-lived HS256 JWTs signed with a process-wide secret; verification
// never touches the database.
package tokenx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeAccess is the purpose claim stamped on every access token. Tokens
// carrying any other purpose are rejected by Verify.
const PurposeAccess = "access"

// DefaultAccessTTL is the default lifetime for access tokens.
const DefaultAccessTTL = 1 * time.Hour

var (
	// ErrExpired reports a structurally valid token past its expiry.
	ErrExpired = errors.New("tokenx: token expired")
	// ErrMalformed reports a token whose signature or shape is invalid.
	ErrMalformed = errors.New("tokenx: malformed token")
	// ErrWrongPurpose reports a valid token minted for a different purpose.
	ErrWrongPurpose = errors.New("tokenx: wrong token purpose")
)

type accessClaims struct {
	jwt.RegisteredClaims

	// Purpose distinguishes access tokens from any other signed artifact
	// sharing the secret.
	Purpose string `json:"purpose"`
}

// Codec issues and verifies access tokens. The zero value is not usable;
// Secret must be set and TTL defaults to DefaultAccessTTL when zero.
type Codec struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// AccessTTL returns the effective token lifetime.
func (c *Codec) AccessTTL() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultAccessTTL
}

// Issue mints a signed access token for the given player.
func (c *Codec) Issue(playerID string) (string, error) {
	return c.IssueAt(playerID, time.Now())
}

// IssueAt is Issue with an explicit clock, useful for tests.
func (c *Codec) IssueAt(playerID string, now time.Time) (string, error) {
	if len(c.Secret) == 0 {
		return "", errors.New("tokenx: signing secret not configured")
	}

	ttl := c.AccessTTL()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: PurposeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("tokenx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and purpose and returns the subject
// player ID.
func (c *Codec) Verify(raw string) (string, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrMalformed
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrMalformed
	}
	if claims.Purpose != PurposeAccess {
		return "", ErrWrongPurpose
	}

	return claims.Subject, nil
}
