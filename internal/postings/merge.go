package postings

import (
	"context"
	"errors"
	"fmt"

	"jobintake-engine/internal/dedupe"
	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/metrics"
	"jobintake-engine/internal/store"
)

// MergeCapture attaches a stored capture to its posting inside tx, creating
// the posting when no existing one matches. It reports the posting id and
// whether the posting was created.
//
// Matching is by exact key first, then by company|title|host when the row
// carries both company and title.
func MergeCapture(ctx context.Context, tx *store.Tx, captureID string, row domain.Row) (string, bool, error) {
	keys := dedupe.Keys(row)
	if err := tx.LockKeys(ctx, keys.Exact, keys.CompanyTitleHost); err != nil {
		return "", false, err
	}

	existing, err := tx.FindPostingByExactKey(ctx, keys.Exact)
	if errors.Is(err, store.ErrNotFound) {
		if row.Company != "" && row.JobTitle != "" {
			existing, err = tx.FindPostingByCompanyTitleHostKey(ctx, keys.CompanyTitleHost)
		} else {
			metrics.SecondaryMatchSkipped.Inc()
		}
	}

	switch {
	case err == nil:
		merged, changed := mergeFields(existing, captureID, row)
		if changed {
			if err := tx.UpdatePostingMerge(ctx, merged); err != nil {
				return "", false, fmt.Errorf("update posting %s: %w", merged.ID, err)
			}
		}
		metrics.MergesTotal.WithLabelValues("merged").Inc()
		return existing.ID, false, nil

	case errors.Is(err, store.ErrNotFound):
		p := domain.Posting{
			ID:                        domain.NewID(),
			CanonicalURL:              keys.CanonicalURL,
			Company:                   row.Company,
			JobTitle:                  row.JobTitle,
			Location:                  row.Location,
			SourceHost:                keys.Host,
			Status:                    domain.StatusNew,
			NextAction:                domain.NextRetryFetch,
			CaptureIDs:                domain.IDSet{captureID},
			DedupeKeyExact:            keys.Exact,
			DedupeKeyCompanyTitleHost: keys.CompanyTitleHost,
		}
		if err := tx.InsertPosting(ctx, p); err != nil {
			return "", false, fmt.Errorf("insert posting: %w", err)
		}
		metrics.MergesTotal.WithLabelValues("created").Inc()
		return p.ID, true, nil

	default:
		return "", false, fmt.Errorf("find posting: %w", err)
	}
}

// mergeFields applies one capture to an existing posting. Company, title and
// location are only filled when empty; the first non-empty value wins.
func mergeFields(p domain.Posting, captureID string, row domain.Row) (domain.Posting, bool) {
	changed := false
	if !p.CaptureIDs.Contains(captureID) {
		p.CaptureIDs = p.CaptureIDs.Add(captureID)
		changed = true
	}

	identity := false
	if p.Company == "" && row.Company != "" {
		p.Company = row.Company
		identity = true
	}
	if p.JobTitle == "" && row.JobTitle != "" {
		p.JobTitle = row.JobTitle
		identity = true
	}
	if p.Location == "" && row.Location != "" {
		p.Location = row.Location
		changed = true
	}

	if identity {
		p.DedupeKeyCompanyTitleHost = dedupe.KeyCompanyTitleHost(p.Company, p.JobTitle, p.SourceHost)
		changed = true
	}
	return p, changed
}
