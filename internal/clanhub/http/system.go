package http

import (
	"net/http"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/pkg/httpx"
)

// LivezHandler is the liveness probe. It answers 200 whenever the process is
// serving requests.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"uptime":  time.Since(startTime).String(),
			"version": version,
		})
	}
}

// ReadyzHandler is the readiness probe. It fails when the database is
// unreachable.
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
		})
	}
}
