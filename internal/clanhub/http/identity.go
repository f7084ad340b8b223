package http

import (
	"context"

	"github.com/squadcommunity/clanhub/internal/clanhub/service"
	"github.com/squadcommunity/clanhub/pkg/httpx"
)

// IdentityResolver adapts AuthService to the httpx.Authenticator interface
// and stamps the admin flag from the configured Steam ID allow-list.
type IdentityResolver struct {
	Auth          *service.AuthService
	AdminSteamIDs map[string]struct{}
}

func NewIdentityResolver(auth *service.AuthService, adminSteamIDs []string) *IdentityResolver {
	admins := make(map[string]struct{}, len(adminSteamIDs))
	for _, id := range adminSteamIDs {
		if id != "" {
			admins[id] = struct{}{}
		}
	}
	return &IdentityResolver{Auth: auth, AdminSteamIDs: admins}
}

func (r *IdentityResolver) Identity(ctx context.Context, accessToken string) (httpx.Identity, error) {
	player, err := r.Auth.Authenticate(ctx, accessToken)
	if err != nil {
		return httpx.Identity{}, err
	}

	_, admin := r.AdminSteamIDs[player.SteamID]
	return httpx.Identity{
		PlayerID: player.ID,
		SteamID:  player.SteamID,
		Username: player.Username,
		Admin:    admin,
	}, nil
}

// actorFromContext converts the request identity into a service actor.
func actorFromContext(ctx context.Context) (service.Actor, bool) {
	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{PlayerID: id.PlayerID, Admin: id.Admin}, true
}
