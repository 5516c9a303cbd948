package httpapi

import (
	"net"
	"net/http"

	"jobintake-engine/internal/store"
)

type DBHandler struct {
	DB *store.DB
}

// Checkpoint flushes the SQLite WAL into the main file. Loopback only; a no-op
// on Postgres.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	if h.DB.Dialect() != store.SQLite {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if _, err := h.DB.Pool.ExecContext(r.Context(), `PRAGMA wal_checkpoint(FULL);`); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
