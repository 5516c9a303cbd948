package httpapi

import (
	"net/http"

	"jobintake-engine/internal/store"
)

type HealthHandler struct {
	DB *store.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	postings, err := h.DB.CountPostings(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	captures, err := h.DB.CountCaptures(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"storage":  h.DB.Dialect().String(),
		"postings": postings,
		"captures": captures,
	})
}
