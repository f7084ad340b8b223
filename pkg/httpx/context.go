package httpx

import "context"

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyUserID   ctxKey = "user_id"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	PlayerID string
	SteamID  string
	Username string
	Admin    bool
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(Identity)
	return id, ok
}

func contextWithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, CtxKeyIdentity, id)
	return context.WithValue(ctx, CtxKeyUserID, id.PlayerID)
}
