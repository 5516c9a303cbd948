package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobintake-engine/internal/domain"
)

func (t *Tx) InsertAtsResolution(ctx context.Context, r domain.AtsResolution) error {
	if r.AtsType == "" {
		r.AtsType = domain.ATSUnknown
	}
	if r.Method == "" {
		r.Method = "pattern"
	}
	_, err := t.exec(ctx, `
INSERT INTO ats_resolutions (id, posting_id, ats_type, ats_url, confidence, method)
VALUES (?, ?, ?, ?, ?, ?);`,
		r.ID, r.PostingID, string(r.AtsType), nullable(r.AtsURL), r.Confidence, r.Method)
	return err
}

// GetAtsResolution returns the resolution attached to a posting, if any.
func (h handle) GetAtsResolution(ctx context.Context, postingID string) (domain.AtsResolution, error) {
	var (
		r      domain.AtsResolution
		typ    string
		atsURL sql.NullString
	)
	err := h.queryRow(ctx, `
SELECT id, posting_id, ats_type, ats_url, confidence, method
FROM ats_resolutions WHERE posting_id = ? ORDER BY id LIMIT 1;`, postingID).
		Scan(&r.ID, &r.PostingID, &typ, &atsURL, &r.Confidence, &r.Method)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AtsResolution{}, ErrNotFound
	}
	if err != nil {
		return domain.AtsResolution{}, err
	}
	r.AtsType = domain.ATSType(typ)
	r.AtsURL = fromNull(atsURL)
	return r, nil
}

func (t *Tx) DeleteAtsResolutions(ctx context.Context, postingID string) (int64, error) {
	res, err := t.exec(ctx, `DELETE FROM ats_resolutions WHERE posting_id = ?;`, postingID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListUnresolvedPostings returns up to limit postings with no ATS resolution,
// oldest id first.
func (h handle) ListUnresolvedPostings(ctx context.Context, limit int) ([]domain.Posting, error) {
	rows, err := h.query(ctx, `
SELECT `+postingColumns+` FROM postings p
WHERE NOT EXISTS (SELECT 1 FROM ats_resolutions a WHERE a.posting_id = p.id)
ORDER BY id LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkAtsChecked records an ATS check on a posting. An existing ats_req_id is
// kept.
func (t *Tx) MarkAtsChecked(ctx context.Context, postingID string, status domain.Status, reqID string, at time.Time) error {
	res, err := t.exec(ctx, `
UPDATE postings SET status = ?, ats_req_id = COALESCE(ats_req_id, ?), last_checked_at = ?
WHERE id = ?;`, string(status), nullable(reqID), formatTime(at), postingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
