package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing files
// are skipped; variables already set win over the file.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[config] env file=%s err=%v", p, err)
		}
	}
}

// ApplyEnv overlays INTAKE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				log.Printf("[config] ignoring %s=%q: %v", key, v, err)
				return
			}
			*dst = n
		}
	}

	str("INTAKE_DATA_DIR", &cfg.App.DataDir)
	num("INTAKE_PORT", &cfg.App.Port)
	str("INTAKE_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("INTAKE_SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("INTAKE_POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	num("INTAKE_POSTGRES_MAX_CONNS", &cfg.Storage.Postgres.MaxConns)
	num("INTAKE_IMPORT_MAX_ROWS", &cfg.Import.MaxRows)
	num("INTAKE_ATS_INTERVAL_SECONDS", &cfg.Ats.IntervalSeconds)
	str("INTAKE_ARCHIVE_DRIVER", &cfg.Archive.Driver)
	str("INTAKE_ARCHIVE_DIR", &cfg.Archive.Dir)
	str("INTAKE_ARCHIVE_S3_BUCKET", &cfg.Archive.S3.Bucket)
	str("INTAKE_ARCHIVE_S3_REGION", &cfg.Archive.S3.Region)
	str("INTAKE_ARCHIVE_S3_ENDPOINT", &cfg.Archive.S3.Endpoint)
	if v, ok := os.LookupEnv("INTAKE_ARCHIVE_S3_PATH_STYLE"); ok {
		cfg.Archive.S3.PathStyle = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}
