package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Storage.Driver = strings.ToLower(strings.TrimSpace(out.Storage.Driver))
	out.Archive.Driver = strings.ToLower(strings.TrimSpace(out.Archive.Driver))
	if out.Storage.Driver == "" {
		out.Storage.Driver = "sqlite"
	}
	if out.Archive.Driver == "" {
		out.Archive.Driver = "none"
	}

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	switch out.Storage.Driver {
	case "sqlite":
		if strings.TrimSpace(out.Storage.SQLitePath) == "" {
			res.addErr("storage.sqlite_path is required when storage.driver=sqlite")
		}
	case "postgres":
		if strings.TrimSpace(out.Storage.Postgres.DSN) == "" {
			res.addErr("storage.postgres.dsn is required when storage.driver=postgres")
		}
		if out.Storage.Postgres.MaxConns <= 0 {
			res.addWarn("storage.postgres.max_conns is %d; using 8.", out.Storage.Postgres.MaxConns)
			out.Storage.Postgres.MaxConns = 8
		}
		if strings.Contains(out.Storage.Postgres.DSN, "password=") || strings.Contains(out.Storage.Postgres.DSN, ":@") {
			res.addWarn("storage.postgres.dsn appears to embed a password; prefer the keychain (POST /api/secrets/postgres).")
		}
	default:
		res.addErr("storage.driver must be sqlite or postgres, got %q", out.Storage.Driver)
	}

	// import sanity
	if out.Import.MaxRows < 0 {
		res.addErr("import.max_rows must be >= 0 (0 disables the limit)")
	} else if out.Import.MaxRows == 0 {
		res.addWarn("import.max_rows is 0; batch size is unlimited.")
	}
	if out.Import.SheetTimeoutSeconds <= 0 {
		res.addErr("import.sheet_timeout_seconds must be > 0")
	}
	if out.Import.SheetRatePerSec <= 0 {
		res.addErr("import.sheet_rate_per_sec must be > 0")
	} else if out.Import.SheetRatePerSec > 10 {
		res.addWarn("import.sheet_rate_per_sec is high (%.1f) and may get rate limited by Google.", out.Import.SheetRatePerSec)
	}
	if out.Import.SheetBurst < 1 {
		out.Import.SheetBurst = 1
	}
	if out.Import.Parallel < 1 {
		res.addErr("import.parallel must be >= 1")
	}

	if out.Import.WatchIntervalMinutes < 0 {
		res.addErr("import.watch_interval_minutes must be >= 0")
	}
	watch := out.Import.WatchSheets[:0:0]
	for _, u := range out.Import.WatchSheets {
		if u = strings.TrimSpace(u); u != "" {
			watch = append(watch, u)
		}
	}
	out.Import.WatchSheets = watch
	if len(watch) > 0 && out.Import.WatchIntervalMinutes == 0 {
		res.addWarn("import.watch_sheets is set but watch_interval_minutes is 0; sheets will not be re-imported.")
	}

	if out.Ats.IntervalSeconds < 0 {
		res.addErr("ats.interval_seconds must be >= 0")
	}
	if out.Ats.BatchSize < 1 {
		res.addWarn("ats.batch_size is %d; using 100.", out.Ats.BatchSize)
		out.Ats.BatchSize = 100
	}

	if out.Listing.DefaultLimit < 1 || out.Listing.DefaultLimit > 200 {
		res.addErr("listing.default_limit must be 1..200")
	}

	switch out.Archive.Driver {
	case "none":
	case "fs":
		if strings.TrimSpace(out.Archive.Dir) == "" {
			res.addErr("archive.dir is required when archive.driver=fs")
		}
	case "s3":
		if strings.TrimSpace(out.Archive.S3.Bucket) == "" {
			res.addErr("archive.s3.bucket is required when archive.driver=s3")
		}
		if out.Archive.S3.Endpoint != "" && !out.Archive.S3.PathStyle {
			res.addWarn("archive.s3.endpoint is set without path_style; most S3-compatible servers need path_style=true.")
		}
	default:
		res.addErr("archive.driver must be none, fs or s3, got %q", out.Archive.Driver)
	}

	return out, res
}
