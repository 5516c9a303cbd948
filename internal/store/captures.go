package store

import (
	"context"
	"database/sql"
	"errors"

	"jobintake-engine/internal/domain"
)

const captureColumns = `id, source_site, source_url, job_title, company, location, apply_url_hint,
  seniority_hint, compensation_hint, tags, notes, captured_at, import_batch_id, hard_errors, soft_warnings`

func (t *Tx) InsertCapture(ctx context.Context, c domain.Capture) error {
	_, err := t.exec(ctx, `
INSERT INTO captures (`+captureColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		c.ID,
		nullable(c.SourceSite),
		c.SourceURL,
		nullable(c.JobTitle),
		nullable(c.Company),
		nullable(c.Location),
		nullable(c.ApplyURLHint),
		nullable(c.SeniorityHint),
		nullable(c.CompensationHint),
		encodeList(c.Tags),
		nullable(c.Notes),
		formatTime(c.CapturedAt),
		nullable(c.ImportBatchID),
		encodeList(c.HardErrors),
		encodeList(c.SoftWarnings),
	)
	return err
}

const deleteChunk = 500

// DeleteCaptures removes the given captures and reports how many rows went.
func (t *Tx) DeleteCaptures(ctx context.Context, ids []string) (int64, error) {
	var total int64
	for start := 0; start < len(ids); start += deleteChunk {
		end := min(start+deleteChunk, len(ids))
		chunk := ids[start:end]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		res, err := t.exec(ctx, `DELETE FROM captures WHERE id IN (`+placeholders(len(chunk))+`);`, args...)
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (h handle) GetCapture(ctx context.Context, id string) (domain.Capture, error) {
	row := h.queryRow(ctx, `SELECT `+captureColumns+` FROM captures WHERE id = ?;`, id)

	var (
		c                                             domain.Capture
		site, title, company, loc, hint, senior, comp sql.NullString
		notes, batch                                  sql.NullString
		tags, capturedAt, hard, soft                  string
	)
	err := row.Scan(&c.ID, &site, &c.SourceURL, &title, &company, &loc, &hint,
		&senior, &comp, &tags, &notes, &capturedAt, &batch, &hard, &soft)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Capture{}, ErrNotFound
	}
	if err != nil {
		return domain.Capture{}, err
	}

	c.SourceSite = fromNull(site)
	c.JobTitle = fromNull(title)
	c.Company = fromNull(company)
	c.Location = fromNull(loc)
	c.ApplyURLHint = fromNull(hint)
	c.SeniorityHint = fromNull(senior)
	c.CompensationHint = fromNull(comp)
	c.Tags = decodeList(tags)
	c.Notes = fromNull(notes)
	c.CapturedAt = parseTime(capturedAt)
	c.ImportBatchID = fromNull(batch)
	c.HardErrors = decodeList(hard)
	c.SoftWarnings = decodeList(soft)
	return c, nil
}

func (h handle) CountCaptures(ctx context.Context) (int, error) {
	var n int
	err := h.queryRow(ctx, `SELECT COUNT(*) FROM captures;`).Scan(&n)
	return n, err
}
