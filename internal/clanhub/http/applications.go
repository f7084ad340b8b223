package http

import (
	"encoding/json"
	"net/http"

	"github.com/squadcommunity/clanhub/internal/clanhub/service"
)

// ApplicationHandler serves the application lifecycle: apply, list, approve,
// reject, withdraw.
type ApplicationHandler struct {
	Membership *service.MembershipService
}

type applyRequest struct {
	Message string `json:"message"`
}

// HandleApply serves POST /api/clans/{id}/applications.
func (h *ApplicationHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	var req applyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	app, err := h.Membership.Apply(ctx, actor, r.PathValue("id"), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"application": applicationView(app)})
}

// HandleListForClan serves GET /api/clans/{id}/applications, owner-only.
// The status query parameter filters; empty means all.
func (h *ApplicationHandler) HandleListForClan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	status := r.URL.Query().Get("status")
	apps, err := h.Membership.ListApplications(ctx, actor, r.PathValue("id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"applications": applicationViews(apps)})
}

// HandleApprove serves POST /api/applications/{id}/approve.
func (h *ApplicationHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.ApproveApplication(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleReject serves POST /api/applications/{id}/reject.
func (h *ApplicationHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.RejectApplication(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// HandleWithdraw serves DELETE /api/applications/{id}, applicant-only.
func (h *ApplicationHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Membership.WithdrawApplication(ctx, actor, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}
