package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"jobintake-engine/internal/domain"
)

const postingColumns = `id, canonical_url, company, job_title, location, source_host, status,
  next_action, capture_ids, dedupe_key_exact, dedupe_key_company_title_host, ats_req_id, last_checked_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPosting(s scanner) (domain.Posting, error) {
	var (
		p                     domain.Posting
		loc, reqID, checkedAt sql.NullString
		status, next, ids     string
	)
	if err := s.Scan(&p.ID, &p.CanonicalURL, &p.Company, &p.JobTitle, &loc, &p.SourceHost,
		&status, &next, &ids, &p.DedupeKeyExact, &p.DedupeKeyCompanyTitleHost, &reqID, &checkedAt); err != nil {
		return domain.Posting{}, err
	}
	p.Location = fromNull(loc)
	p.Status = domain.Status(status)
	p.NextAction = domain.NextAction(next)
	p.CaptureIDs = domain.IDSet(decodeList(ids))
	p.AtsReqID = fromNull(reqID)
	if checkedAt.Valid && checkedAt.String != "" {
		t := parseTime(checkedAt.String)
		p.LastCheckedAt = &t
	}
	return p, nil
}

func (h handle) getPostingWhere(ctx context.Context, where string, arg any) (domain.Posting, error) {
	row := h.queryRow(ctx, `SELECT `+postingColumns+` FROM postings WHERE `+where+` ORDER BY id LIMIT 1;`, arg)
	p, err := scanPosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Posting{}, ErrNotFound
	}
	return p, err
}

func (h handle) GetPosting(ctx context.Context, id string) (domain.Posting, error) {
	return h.getPostingWhere(ctx, `id = ?`, id)
}

// FindPostingByExactKey returns the earliest posting with the given exact key.
func (h handle) FindPostingByExactKey(ctx context.Context, key string) (domain.Posting, error) {
	return h.getPostingWhere(ctx, `dedupe_key_exact = ?`, key)
}

func (h handle) FindPostingByCompanyTitleHostKey(ctx context.Context, key string) (domain.Posting, error) {
	return h.getPostingWhere(ctx, `dedupe_key_company_title_host = ?`, key)
}

// foldCompany is the form the company filter matches against. SQL LOWER only
// folds ASCII on SQLite, so folding happens here for both sides.
func foldCompany(s string) string {
	return strings.ToLower(s)
}

func (t *Tx) InsertPosting(ctx context.Context, p domain.Posting) error {
	_, err := t.exec(ctx, `
INSERT INTO postings (`+postingColumns+`, company_folded)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		p.ID,
		p.CanonicalURL,
		p.Company,
		p.JobTitle,
		nullable(p.Location),
		p.SourceHost,
		string(p.Status),
		string(p.NextAction),
		encodeList(p.CaptureIDs),
		p.DedupeKeyExact,
		p.DedupeKeyCompanyTitleHost,
		nullable(p.AtsReqID),
		nullableTime(p.LastCheckedAt),
		foldCompany(p.Company),
	)
	return err
}

// UpdatePostingMerge persists the fields a merge may change.
func (t *Tx) UpdatePostingMerge(ctx context.Context, p domain.Posting) error {
	res, err := t.exec(ctx, `
UPDATE postings
SET company = ?, company_folded = ?, job_title = ?, location = ?, capture_ids = ?, dedupe_key_company_title_host = ?
WHERE id = ?;`,
		p.Company, foldCompany(p.Company), p.JobTitle, nullable(p.Location), encodeList(p.CaptureIDs), p.DedupeKeyCompanyTitleHost, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *Tx) DeletePosting(ctx context.Context, id string) (int64, error) {
	res, err := t.exec(ctx, `DELETE FROM postings WHERE id = ?;`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type PostingFilter struct {
	Status  domain.Status
	Company string // case-insensitive substring
	Host    string // exact source host
}

// ListPostings returns up to limit postings ordered by id descending, starting
// strictly after cursor when one is given.
func (h handle) ListPostings(ctx context.Context, f PostingFilter, limit int, cursor string) ([]domain.Posting, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(f.Status))
	}
	if c := strings.TrimSpace(f.Company); c != "" {
		where = append(where, `company_folded LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(foldCompany(c))+"%")
	}
	if host := strings.TrimSpace(f.Host); host != "" {
		where = append(where, `source_host = ?`)
		args = append(args, strings.ToLower(host))
	}
	if cursor != "" {
		where = append(where, `id < ?`)
		args = append(args, cursor)
	}

	q := `SELECT ` + postingColumns + ` FROM postings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY id DESC LIMIT ?;`
	args = append(args, limit)

	rows, err := h.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Posting, 0, limit)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (h handle) CountPostings(ctx context.Context) (int, error) {
	var n int
	err := h.queryRow(ctx, `SELECT COUNT(*) FROM postings;`).Scan(&n)
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func nullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return formatTime(*t)
}
