package http

import (
	"errors"
	"net/http"

	"github.com/squadcommunity/clanhub/internal/clanhub/service"
	"github.com/squadcommunity/clanhub/pkg/httpx"
	"github.com/squadcommunity/clanhub/pkg/slogx"
)

// writeOK wraps the payload in the success envelope. The payload map is
// merged into the envelope so responses read {"success":true,"clan":{...}}.
func writeOK(w http.ResponseWriter, code int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	httpx.WriteJSON(w, code, body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := classify(err)
	if code >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		message = "internal error"
	}
	httpx.WriteJSON(w, code, map[string]any{
		"success": false,
		"error":   message,
	})
}

// classify maps service sentinels to HTTP status codes. Anything unknown is
// a 500 and its detail stays out of the response.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidOrExpired):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrAlreadyInClan):
		return http.StatusConflict, "player already belongs to a clan"
	case errors.Is(err, service.ErrOwnerMustTransfer):
		return http.StatusConflict, "owner must transfer ownership before leaving"
	case errors.Is(err, service.ErrSoleOwner):
		return http.StatusConflict, "clan must keep at least one owner"
	case errors.Is(err, service.ErrDuplicatePending):
		return http.StatusConflict, "a pending request already exists"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrStateNotFound):
		return http.StatusBadRequest, "invalid or expired state"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "upstream provider unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
