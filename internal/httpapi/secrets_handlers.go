package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobintake-engine/internal/config"
	"jobintake-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

func (h SecretsHandler) account() string {
	cfg := h.CfgVal.Load().(config.Config)
	return cfg.Storage.Postgres.KeyringAccount
}

// SetPostgresPassword stores the database password in the OS keychain.
func (h SecretsHandler) SetPostgresPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	if err := secrets.SetPostgresPassword(h.account(), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "secret_store_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeletePostgresPassword(w http.ResponseWriter, r *http.Request) {
	if err := secrets.DeletePostgresPassword(h.account()); err != nil {
		WriteError(w, r, http.StatusBadRequest, "secret_delete_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
