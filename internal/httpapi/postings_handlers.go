package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"jobintake-engine/internal/config"
	"jobintake-engine/internal/events"
	"jobintake-engine/internal/postings"
)

type PostingsHandler struct {
	Postings *postings.Service
	Hub      *events.Hub
	CfgVal   *atomic.Value // stores config.Config
}

func (h PostingsHandler) defaultLimit() int {
	if h.CfgVal != nil {
		if cfg, ok := h.CfgVal.Load().(config.Config); ok && cfg.Listing.DefaultLimit > 0 {
			return cfg.Listing.DefaultLimit
		}
	}
	return postings.DefaultLimit
}

func (h PostingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := h.defaultLimit()
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = n
	}

	page, err := h.Postings.List(r.Context(), postings.Filter{
		Status:  strings.TrimSpace(q.Get("status")),
		Company: q.Get("company"),
		Host:    q.Get("host"),
	}, limit, strings.TrimSpace(q.Get("cursor")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// idFromPath extracts {id} from /job_intake/{id} or /jobs/{id}.
func idFromPath(path string) string {
	path = strings.Trim(path, "/")
	i := strings.IndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

func (h PostingsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := idFromPath(r.URL.Path)
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusNotFound, "not_found", "posting not found")
		return
	}

	v, err := h.Postings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h PostingsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id := idFromPath(r.URL.Path)
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusNotFound, "not_found", "posting not found")
		return
	}

	if err := h.Postings.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypePostingDeleted, events.PostingDeleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}
