package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/squadcommunity/clanhub/internal/clanhub/discord"
	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/metrics"
	"github.com/squadcommunity/clanhub/internal/clanhub/service"
	"github.com/squadcommunity/clanhub/internal/clanhub/steam"
	"github.com/squadcommunity/clanhub/pkg/slogx"
)

// AuthHandler serves the Steam login flow, the Discord linking flow and the
// token lifecycle endpoints.
type AuthHandler struct {
	Auth    *service.AuthService
	Players *service.PlayerService
	States  *service.OAuthStateService
	Steam   *steam.Client
	Discord *discord.Client
	Metrics *metrics.Collector

	// BaseURL is this service's public origin, used for OpenID return_to.
	BaseURL string
	// FrontendURL receives the post-login redirect carrying the token pair.
	FrontendURL string
}

// HandleSteamLogin returns the Steam OpenID redirect URL. The frontend sends
// the browser there; Steam sends it back to the callback below.
func (h *AuthHandler) HandleSteamLogin(w http.ResponseWriter, r *http.Request) {
	returnTo := h.BaseURL + "/api/auth/steam/callback"
	writeOK(w, http.StatusOK, map[string]any{
		"authUrl": h.Steam.AuthURL(returnTo, h.BaseURL),
	})
}

// HandleSteamCallback verifies the OpenID assertion, upserts the player and
// redirects to the frontend with a fresh token pair in the URL fragment so
// tokens never hit server logs.
func (h *AuthHandler) HandleSteamCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	steamID, err := h.Steam.VerifyCallback(ctx, r.URL.Query())
	if err != nil {
		log.Warn("steam openid verification failed", "err", err)
		if h.Metrics != nil {
			h.Metrics.RecordUpstreamFailure("steam")
		}
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	profile := service.SteamProfile{SteamID: steamID}
	summaries, err := h.Steam.GetPlayerSummaries(ctx, []string{steamID})
	if err != nil || len(summaries) == 0 {
		// Login proceeds with a bare profile; display fields catch up on the
		// next successful summary fetch.
		log.Warn("steam summary fetch failed", "err", err)
		profile.Username = steamID
	} else {
		profile.Username = summaries[0].PersonaName
		profile.AvatarURL = summaries[0].AvatarFull
	}

	player, err := h.Players.UpsertOnLogin(ctx, profile)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.Auth.Login(ctx, player.ID, clientMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordLogin()
	}

	fragment := url.Values{
		"access_token":  {pair.AccessToken},
		"refresh_token": {pair.RefreshToken},
	}
	http.Redirect(w, r, h.FrontendURL+"/auth/callback#"+fragment.Encode(), http.StatusFound)
}

// HandleDiscordLink begins the Discord linking flow for the authenticated
// player and returns the authorization URL carrying the CSRF state.
func (h *AuthHandler) HandleDiscordLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	returnURL := r.URL.Query().Get("return_to")
	if returnURL == "" {
		returnURL = "/"
	}

	state, err := h.States.Begin(ctx, actor.PlayerID, domain.ProviderDiscord, returnURL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{
		"authUrl": h.Discord.AuthURL(state),
	})
}

// HandleDiscordCallback consumes the state, exchanges the code and links the
// Discord identity to the player the state was minted for.
func (h *AuthHandler) HandleDiscordCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	state, err := h.States.Consume(ctx, q.Get("state"), domain.ProviderDiscord)
	if err != nil {
		writeError(w, r, err)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeError(w, r, service.ErrValidation)
		return
	}

	user, err := h.Discord.ExchangeCode(ctx, code)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordUpstreamFailure("discord")
		}
		writeError(w, r, service.ErrUpstream)
		return
	}

	err = h.Players.LinkDiscord(ctx, state.PlayerID, service.DiscordProfile{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, redirectTarget(h.FrontendURL, state.ReturnURL), http.StatusFound)
}

// redirectTarget resolves a validated return URL against the frontend origin.
// Relative paths are anchored on the frontend; absolute URLs already passed
// the origin allow-list at flow start and are used as-is.
func redirectTarget(frontendURL, returnURL string) string {
	if strings.HasPrefix(returnURL, "/") {
		return frontendURL + returnURL
	}
	return returnURL
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// HandleRefresh rotates a refresh token and returns the new pair.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, r, service.ErrValidation)
		return
	}

	pair, err := h.Auth.Refresh(ctx, req.RefreshToken, clientMeta(r))
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordRefreshDenied()
		}
		writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordRefresh()
	}

	writeOK(w, http.StatusOK, map[string]any{"tokens": pair})
}

// HandleLogout revokes the presented refresh token. Unknown tokens still get
// a 200 so the endpoint cannot be used to probe for live tokens.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, r, service.ErrValidation)
		return
	}

	if err := h.Auth.Revoke(ctx, req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleLogoutAll revokes every session of the authenticated player.
func (h *AuthHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Auth.RevokeAll(ctx, actor.PlayerID); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleMe returns the authenticated player's profile.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	player, err := h.Players.GetPlayer(ctx, actor.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"player": playerView(player, actor.Admin)})
}

func clientMeta(r *http.Request) domain.ClientMeta {
	return domain.ClientMeta{
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
	}
}
