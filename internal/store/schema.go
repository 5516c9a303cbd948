package store

import (
	"context"
	"fmt"
)

const schemaVersion = 1

// idColumn is the primary key type per dialect. Postgres ids use "C" collation
// so that ORDER BY id matches byte order, which the listing cursor relies on.
func idColumn(d Dialect) string {
	if d == Postgres {
		return `TEXT COLLATE "C" PRIMARY KEY`
	}
	return `TEXT PRIMARY KEY`
}

func schemaV1(d Dialect) []string {
	id := idColumn(d)
	return []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS captures (
  id %s,
  source_site TEXT,
  source_url TEXT NOT NULL,
  job_title TEXT,
  company TEXT,
  location TEXT,
  apply_url_hint TEXT,
  seniority_hint TEXT,
  compensation_hint TEXT,
  tags TEXT NOT NULL DEFAULT '[]',
  notes TEXT,
  captured_at TEXT NOT NULL,
  import_batch_id TEXT,
  hard_errors TEXT NOT NULL DEFAULT '[]',
  soft_warnings TEXT NOT NULL DEFAULT '[]'
);`, id),
		`CREATE INDEX IF NOT EXISTS idx_captures_import_batch_id ON captures(import_batch_id);`,

		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS postings (
  id %s,
  canonical_url TEXT NOT NULL,
  company TEXT NOT NULL DEFAULT '',
  company_folded TEXT NOT NULL DEFAULT '',
  job_title TEXT NOT NULL DEFAULT '',
  location TEXT,
  source_host TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'new',
  next_action TEXT NOT NULL DEFAULT 'retry_fetch',
  capture_ids TEXT NOT NULL DEFAULT '[]',
  dedupe_key_exact TEXT NOT NULL,
  dedupe_key_company_title_host TEXT NOT NULL,
  ats_req_id TEXT,
  last_checked_at TEXT
);`, id),
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_postings_canonical_url ON postings(canonical_url);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_dedupe_key_exact ON postings(dedupe_key_exact);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_dedupe_key_cth ON postings(dedupe_key_company_title_host);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_status ON postings(status);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_source_host ON postings(source_host);`,

		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS ats_resolutions (
  id %s,
  posting_id TEXT NOT NULL REFERENCES postings(id) ON DELETE CASCADE,
  ats_type TEXT NOT NULL DEFAULT 'unknown',
  ats_url TEXT,
  confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  method TEXT NOT NULL DEFAULT 'pattern'
);`, id),
		`CREATE INDEX IF NOT EXISTS idx_ats_resolutions_posting_id ON ats_resolutions(posting_id);`,
	}
}

// Migrate brings the schema up to date. SQLite tracks the applied version in
// PRAGMA user_version; the Postgres statements are all idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if d.dialect == SQLite {
		var v int
		if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
			return err
		}
		if v >= schemaVersion {
			return tx.Commit()
		}
	}

	for _, stmt := range schemaV1(d.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if d.dialect == SQLite {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
