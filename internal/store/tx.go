package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Tx is one atomic unit of work. Reads from handle are promoted onto it.
type Tx struct {
	handle
	tx *sql.Tx
}

// WithTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back on any error, panic or context cancellation.
func (d *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(&Tx{handle: handle{q: sqlTx, dialect: d.dialect}, tx: sqlTx}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LockKeys serializes concurrent transactions that touch the same keys until
// this transaction ends. SQLite transactions already hold the database write
// lock from BEGIN IMMEDIATE, so only Postgres takes advisory locks here.
func (t *Tx) LockKeys(ctx context.Context, keys ...string) error {
	if t.dialect != Postgres {
		return nil
	}
	uniq := make([]string, 0, len(keys))
	seen := map[string]bool{}
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, k)
	}
	// fixed order so two transactions never wait on each other in a cycle
	sort.Strings(uniq)
	for _, k := range uniq {
		if _, err := t.exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended(?, 0));`, k); err != nil {
			return fmt.Errorf("lock key: %w", err)
		}
	}
	return nil
}
