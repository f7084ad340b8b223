package http

import (
	"encoding/json"
	"net/http"

	"github.com/squadcommunity/clanhub/internal/clanhub/domain"
	"github.com/squadcommunity/clanhub/internal/clanhub/service"
)

// ClanHandler serves clan CRUD and the roster view.
type ClanHandler struct {
	Clans      *service.ClanService
	Membership *service.MembershipService
	Players    *service.PlayerService
	Presence   *service.PresenceService
}

// HandleList serves GET /api/clans.
func (h *ClanHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	clans, err := h.Clans.ListClans(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"clans": clanViews(clans)})
}

type createClanRequest struct {
	Tag          string          `json:"tag"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Theme        string          `json:"theme"`
	Requirements json.RawMessage `json:"requirements"`
}

// HandleCreate serves POST /api/clans. The creator becomes the founding
// owner.
func (h *ClanHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	var req createClanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, service.ErrValidation)
		return
	}

	clan, err := h.Membership.CreateClan(ctx, actor, service.CreateClanInput{
		Tag:          req.Tag,
		Name:         req.Name,
		Description:  req.Description,
		Theme:        req.Theme,
		Requirements: string(req.Requirements),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"clan": clanView(clan)})
}

// HandleGet serves GET /api/clans/{id}.
func (h *ClanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clan, err := h.Clans.GetClan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"clan": clanView(clan)})
}

type updateClanRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Theme        *string          `json:"theme"`
	BannerURL    *string          `json:"bannerUrl"`
	LogoURL      *string          `json:"logoUrl"`
	Requirements *json.RawMessage `json:"requirements"`
}

// HandleUpdate serves PATCH /api/clans/{id}, owner-only.
func (h *ClanHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	var req updateClanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, service.ErrValidation)
		return
	}

	in := service.UpdateSettingsInput{
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		BannerURL:   req.BannerURL,
		LogoURL:     req.LogoURL,
	}
	if req.Requirements != nil {
		requirements := string(*req.Requirements)
		in.Requirements = &requirements
	}

	clan, err := h.Clans.UpdateSettings(ctx, actor, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"clan": clanView(clan)})
}

// HandleDelete serves DELETE /api/clans/{id}, owner or admin.
func (h *ClanHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.DeleteClan(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleMembers serves GET /api/clans/{id}/members with advisory presence.
func (h *ClanHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := h.Membership.ListMembers(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]MemberView, 0, len(members))
	steamIDs := make([]string, 0, len(members))
	steamByPlayer := make(map[string]string, len(members))
	for _, m := range members {
		if p, err := h.Players.GetPlayer(ctx, m.PlayerID); err == nil {
			steamIDs = append(steamIDs, p.SteamID)
			steamByPlayer[m.PlayerID] = p.SteamID
		}
		views = append(views, memberView(m))
	}

	if h.Presence != nil && len(steamIDs) > 0 {
		presences := h.Presence.Lookup(ctx, steamIDs)
		bySteam := make(map[string]service.Presence, len(presences))
		for _, p := range presences {
			bySteam[p.SteamID] = p
		}
		for i := range views {
			if presence, ok := bySteam[steamByPlayer[views[i].PlayerID]]; ok {
				online, inGame := presence.Online, presence.InGame
				views[i].Online = &online
				views[i].InGame = &inGame
			}
		}
	}

	writeOK(w, http.StatusOK, map[string]any{"members": views})
}

// HandleJoin serves POST /api/clans/{id}/join.
func (h *ClanHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.Join(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleLeave serves POST /api/clans/{id}/leave.
func (h *ClanHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.Leave(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleKick serves POST /api/clans/{id}/members/{playerID}/kick.
func (h *ClanHandler) HandleKick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.Kick(ctx, actor, r.PathValue("id"), r.PathValue("playerID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// HandleChangeRole serves PUT /api/clans/{id}/members/{playerID}/role.
// Admins promoting to owner take the recovery path that skips the owner
// check.
func (h *ClanHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, service.ErrValidation)
		return
	}

	clanID, playerID := r.PathValue("id"), r.PathValue("playerID")

	var err error
	if actor.Admin && req.Role == domain.RoleOwner {
		err = h.Membership.AssignOwner(ctx, actor, clanID, playerID)
	} else {
		err = h.Membership.ChangeRole(ctx, actor, clanID, playerID, req.Role)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}
