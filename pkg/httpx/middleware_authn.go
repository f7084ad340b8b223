package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/squadcommunity/clanhub/pkg/slogx"
)

// Authenticator resolves a bearer access token to an identity. Any failure
// (malformed, expired, unknown subject) is reported as a single error; the
// middleware does not need to distinguish the cases.
type Authenticator interface {
	Identity(ctx context.Context, accessToken string) (Identity, error)
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// resolved identity to the request context for downstream handlers.
func RequireAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			id, err := a.Identity(ctx, raw)
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)
				writeBearerError(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, id)))
		})
	}
}

// OptionalAuth attaches an identity when a valid bearer token is presented
// and otherwise lets the request through anonymously.
func OptionalAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw, ok := bearerToken(r); ok {
				if id, err := a.Identity(ctx, raw); err == nil {
					ctx = contextWithIdentity(ctx, id)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"error":   desc,
	})
}
