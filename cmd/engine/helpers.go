package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobintake-engine/internal/httpapi"
)

const tokenFile = "engine.token"

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownToken returns INTAKE_SHUTDOWN_TOKEN, or a fresh token written to
// <dataDir>/engine.token for local tooling to read.
func shutdownToken(dataDir string) (string, error) {
	if t := strings.TrimSpace(os.Getenv("INTAKE_SHUTDOWN_TOKEN")); t != "" {
		return t, nil
	}
	t, err := randomToken(16)
	if err != nil {
		return "", err
	}
	return t, os.WriteFile(filepath.Join(dataDir, tokenFile), []byte(t+"\n"), 0o600)
}

func removeTokenFile(dataDir string) {
	_ = os.Remove(filepath.Join(dataDir, tokenFile))
}

func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			httpapi.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
			return
		}

		// Local-only guard
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			httpapi.WriteError(w, r, http.StatusForbidden, "forbidden", "shutdown is loopback only")
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			httpapi.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "bad shutdown token")
			return
		}

		// Respond immediately, then shutdown asynchronously
		httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "shutting_down": true})

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
