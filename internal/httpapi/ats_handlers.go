package httpapi

import (
	"net/http"
	"strconv"

	"jobintake-engine/internal/ats"
)

type AtsHandler struct {
	Resolver *ats.Resolver
}

// Resolve runs one resolver pass now. ?limit= caps how many postings it scans.
func (h AtsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h.Resolver == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "ats_unavailable", "ats resolver is not configured")
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			WriteError(w, r, http.StatusBadRequest, "invalid_query", "limit must be 1..1000")
			return
		}
		limit = n
	}

	n, err := h.Resolver.RunOnce(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "ats_resolve_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"resolved": n})
}
