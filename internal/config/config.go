// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Storage struct {
		Driver     string `yaml:"driver"` // sqlite | postgres
		SQLitePath string `yaml:"sqlite_path"`
		Postgres   struct {
			DSN            string `yaml:"dsn"`
			KeyringAccount string `yaml:"keyring_account"` // password lives in the OS keychain
			MaxConns       int    `yaml:"max_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Import struct {
		MaxRows             int     `yaml:"max_rows"`
		SheetTimeoutSeconds int     `yaml:"sheet_timeout_seconds"`
		SheetRatePerSec     float64 `yaml:"sheet_rate_per_sec"`
		SheetBurst          int     `yaml:"sheet_burst"`
		Parallel            int     `yaml:"parallel"`

		// Sheets re-imported on a timer; 0 minutes disables the watch.
		WatchSheets          []string `yaml:"watch_sheets"`
		WatchIntervalMinutes int      `yaml:"watch_interval_minutes"`
	} `yaml:"import"`

	Ats struct {
		IntervalSeconds int `yaml:"interval_seconds"` // 0 disables the background resolver
		BatchSize       int `yaml:"batch_size"`
	} `yaml:"ats"`

	Listing struct {
		DefaultLimit int `yaml:"default_limit"`
	} `yaml:"listing"`

	Archive struct {
		Driver string `yaml:"driver"` // none | fs | s3
		Dir    string `yaml:"dir"`
		S3     struct {
			Bucket    string `yaml:"bucket"`
			Region    string `yaml:"region"`
			Endpoint  string `yaml:"endpoint"`
			PathStyle bool   `yaml:"path_style"`
			Prefix    string `yaml:"prefix"`
		} `yaml:"s3"`
	} `yaml:"archive"`
}

// Default is the configuration written on first start.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLitePath = "intake.db"
	cfg.Storage.Postgres.KeyringAccount = "postgres"
	cfg.Storage.Postgres.MaxConns = 8
	cfg.Import.MaxRows = 10000
	cfg.Import.SheetTimeoutSeconds = 20
	cfg.Import.SheetRatePerSec = 1
	cfg.Import.SheetBurst = 2
	cfg.Import.Parallel = 4
	cfg.Import.WatchIntervalMinutes = 60
	cfg.Ats.IntervalSeconds = 300
	cfg.Ats.BatchSize = 100
	cfg.Listing.DefaultLimit = 50
	cfg.Archive.Driver = "none"
	cfg.Archive.Dir = "archive"
	cfg.Archive.S3.Region = "us-east-1"
	cfg.Archive.S3.Prefix = "intake"
	return cfg
}

// Load reads a YAML file over the defaults, so omitted keys keep their default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
