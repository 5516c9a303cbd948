package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"jobintake-engine/internal/app"
	"jobintake-engine/internal/config"
	"jobintake-engine/internal/events"
	"jobintake-engine/internal/httpapi"
)

func main() {
	config.LoadDotEnv(".env")

	dataDir := os.Getenv("INTAKE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap: %v", err)
	}
	log.Printf("[config] using %s", userCfgPath)

	cfg, err := app.LoadConfig(userCfgPath)
	if err != nil {
		log.Fatal(err)
	}
	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, dataDir, cfg, app.Options{LockDataDir: true})
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer a.Close()
	log.Printf("[store] driver=%s", a.DB.Dialect())

	token, err := shutdownToken(dataDir)
	if err != nil {
		log.Fatalf("shutdown token: %v", err)
	}
	defer removeTokenFile(dataDir)

	hub := events.NewHub()
	mux := httpapi.NewMux(httpapi.Deps{
		DB:          a.DB,
		Importer:    a.Importer,
		Postings:    a.Postings,
		Ats:         a.Ats,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     func() (config.Config, error) { return app.LoadConfig(userCfgPath) },
	})

	waitBackground := a.Background(ctx, hub)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.Recover,
			httpapi.AccessLog,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Printf("level=info msg=\"engine listening\" addr=%s data_dir=%s", addr, dataDir)
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("level=error msg=\"serve failed\" err=%v", err)
	}

	// /shutdown stops the server without a signal; stop the background jobs too
	stop()
	waitBackground()
	log.Printf("level=info msg=\"engine stopped\"")
}
