package ats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/metrics"
	"jobintake-engine/internal/store"
)

const MethodPattern = "pattern"

// Resolver attaches an AtsResolution to postings that have none.
type Resolver struct {
	db  *store.DB
	now func() time.Time
}

func NewResolver(db *store.DB) *Resolver {
	return &Resolver{db: db, now: time.Now}
}

// RunOnce resolves up to batch postings and returns how many it wrote.
func (r *Resolver) RunOnce(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = 100
	}
	ps, err := r.db.ListUnresolvedPostings(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("list unresolved: %w", err)
	}

	n := 0
	for _, p := range ps {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		wrote, err := r.resolve(ctx, p.ID)
		if err != nil {
			return n, fmt.Errorf("resolve ats %s: %w", p.ID, err)
		}
		if wrote {
			n++
		}
	}
	if n > 0 {
		log.Printf("[ats] resolved=%d scanned=%d", n, len(ps))
	}
	return n, nil
}

func (r *Resolver) resolve(ctx context.Context, postingID string) (bool, error) {
	wrote := false
	err := r.db.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.LockKeys(ctx, "ats:"+postingID); err != nil {
			return err
		}
		if _, err := tx.GetAtsResolution(ctx, postingID); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		p, err := tx.GetPosting(ctx, postingID)
		if errors.Is(err, store.ErrNotFound) {
			// deleted since it was listed
			return nil
		}
		if err != nil {
			return err
		}

		m := Resolve(p.CanonicalURL)
		res := domain.AtsResolution{
			ID:         domain.NewID(),
			PostingID:  p.ID,
			AtsType:    m.Type,
			Confidence: m.Confidence,
			Method:     MethodPattern,
		}
		status := p.Status
		if m.Type != domain.ATSUnknown {
			res.AtsURL = p.CanonicalURL
			if status == domain.StatusNew {
				status = domain.StatusResolvedATS
			}
		}

		if err := tx.InsertAtsResolution(ctx, res); err != nil {
			return err
		}
		if err := tx.MarkAtsChecked(ctx, p.ID, status, m.ReqID, r.now().UTC()); err != nil {
			return err
		}
		metrics.AtsResolutions.WithLabelValues(string(m.Type)).Inc()
		wrote = true
		return nil
	})
	return wrote, err
}
