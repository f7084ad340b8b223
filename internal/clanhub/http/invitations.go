package http

import (
	"encoding/json"
	"net/http"

	"github.com/squadcommunity/clanhub/internal/clanhub/service"
)

// InvitationHandler serves the invitation lifecycle: invite, list, accept,
// reject, cancel.
type InvitationHandler struct {
	Membership *service.MembershipService
}

type inviteRequest struct {
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
}

// HandleInvite serves POST /api/clans/{id}/invitations, owner-only.
func (h *InvitationHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, r, service.ErrValidation)
		return
	}

	inv, err := h.Membership.Invite(ctx, actor, r.PathValue("id"), req.PlayerID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"invitation": invitationView(inv)})
}

// HandleListMine serves GET /api/invitations, the caller's pending
// invitations.
func (h *InvitationHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	invs, err := h.Membership.ListMyInvitations(ctx, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"invitations": invitationViews(invs)})
}

// HandleAccept serves POST /api/invitations/{id}/accept, recipient-only.
func (h *InvitationHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.AcceptInvitation(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleReject serves POST /api/invitations/{id}/reject, recipient-only.
func (h *InvitationHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.RejectInvitation(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleCancel serves DELETE /api/invitations/{id}, owner-only.
func (h *InvitationHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.CancelInvitation(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}
