// Package app wires configuration, storage and services for the engine and
// the CLI.
package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"jobintake-engine/internal/archive"
	"jobintake-engine/internal/ats"
	"jobintake-engine/internal/config"
	"jobintake-engine/internal/importer"
	"jobintake-engine/internal/postings"
	"jobintake-engine/internal/secrets"
	"jobintake-engine/internal/sheets"
	"jobintake-engine/internal/store"
)

type App struct {
	Cfg     config.Config
	DataDir string

	DB       *store.DB
	Importer *importer.Service
	Postings *postings.Service
	Ats      *ats.Resolver

	lock *flock.Flock
}

type Options struct {
	// LockDataDir takes the single-engine lock on the data dir (SQLite only).
	LockDataDir bool
}

// LoadConfig reads path, overlays INTAKE_* env vars and validates the result.
func LoadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg)

	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("[config] warn: %s", w)
	}
	if !vr.OK() {
		return cfg, fmt.Errorf("invalid config %s:\n- %s", path, strings.Join(vr.Errors, "\n- "))
	}
	return cfg, nil
}

// Open connects storage, runs migrations and builds the services.
func Open(ctx context.Context, dataDir string, cfg config.Config, opts Options) (*App, error) {
	a := &App{Cfg: cfg, DataDir: dataDir}

	if opts.LockDataDir && cfg.Storage.Driver == "sqlite" {
		fl, err := store.LockDataDir(dataDir)
		if err != nil {
			return nil, err
		}
		a.lock = fl
	}

	db, err := OpenStore(ctx, dataDir, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.DB = db

	arch, err := OpenArchive(ctx, dataDir, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	fetcher := sheets.NewFetcher(
		time.Duration(cfg.Import.SheetTimeoutSeconds)*time.Second,
		sheets.NewHostLimiter(cfg.Import.SheetRatePerSec, cfg.Import.SheetBurst),
	)
	a.Importer = importer.NewService(importer.NewPipeline(db), fetcher, arch, cfg.Import.MaxRows)
	a.Postings = postings.NewService(db)
	a.Ats = ats.NewResolver(db)
	return a, nil
}

func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.lock != nil {
		_ = a.lock.Unlock()
	}
	return err
}

func OpenStore(ctx context.Context, dataDir string, cfg config.Config) (*store.DB, error) {
	var (
		db  *store.DB
		err error
	)
	switch cfg.Storage.Driver {
	case "postgres":
		dsn := secrets.PostgresDSN(cfg.Storage.Postgres.DSN, cfg.Storage.Postgres.KeyringAccount)
		db, err = store.OpenPostgres(dsn, cfg.Storage.Postgres.MaxConns)
	default:
		db, err = store.Open(resolve(dataDir, cfg.Storage.SQLitePath))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenArchive returns nil when archiving is disabled.
func OpenArchive(ctx context.Context, dataDir string, cfg config.Config) (archive.Archiver, error) {
	switch cfg.Archive.Driver {
	case "fs":
		return archive.NewFS(resolve(dataDir, cfg.Archive.Dir))
	case "s3":
		s3cfg := cfg.Archive.S3
		return archive.NewS3(ctx, archive.S3Config{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
			Prefix:    s3cfg.Prefix,
		})
	default:
		return nil, nil
	}
}

func resolve(dataDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
