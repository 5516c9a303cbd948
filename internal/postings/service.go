// Package postings owns the canonical posting set: merging captures into it
// and the listing, lookup and deletion operations over it.
package postings

import (
	"context"
	"errors"
	"fmt"
	"log"

	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/metrics"
	"jobintake-engine/internal/store"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var (
	ErrNotFound      = fmt.Errorf("posting %w", store.ErrNotFound)
	ErrInvalidLimit  = fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	ErrInvalidStatus = errors.New("unknown status")
)

type Filter struct {
	Status  string
	Company string
	Host    string
}

// View is the JSON projection of a posting.
type View struct {
	ID           string   `json:"id"`
	CanonicalURL string   `json:"canonical_url"`
	Company      string   `json:"company"`
	JobTitle     string   `json:"job_title"`
	Location     *string  `json:"location"`
	SourceHost   string   `json:"source_host"`
	Status       string   `json:"status"`
	NextAction   string   `json:"next_action"`
	AtsReqID     *string  `json:"ats_req_id"`
	Ats          *AtsView `json:"ats,omitempty"`
}

type AtsView struct {
	AtsType    string  `json:"ats_type"`
	AtsURL     *string `json:"ats_url"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

type Page struct {
	Items      []View  `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

type Service struct {
	db *store.DB
}

func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// List returns one page of postings, newest id first. A non-nil NextCursor
// means more rows exist; pass it back as cursor for the next page.
func (s *Service) List(ctx context.Context, f Filter, limit int, cursor string) (Page, error) {
	if limit < 1 || limit > MaxLimit {
		return Page{}, ErrInvalidLimit
	}
	if f.Status != "" && !domain.Status(f.Status).Valid() {
		return Page{}, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}

	rows, err := s.db.ListPostings(ctx, store.PostingFilter{
		Status:  domain.Status(f.Status),
		Company: f.Company,
		Host:    f.Host,
	}, limit+1, cursor)
	if err != nil {
		return Page{}, fmt.Errorf("list postings: %w", err)
	}

	page := Page{Items: make([]View, 0, min(len(rows), limit))}
	if len(rows) > limit {
		rows = rows[:limit]
		next := rows[limit-1].ID
		page.NextCursor = &next
	}
	for _, p := range rows {
		page.Items = append(page.Items, toView(p))
	}
	return page, nil
}

// Get returns one posting with its ATS resolution, when present.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	p, err := s.db.GetPosting(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, fmt.Errorf("get posting %s: %w", id, err)
	}

	v := toView(p)
	r, err := s.db.GetAtsResolution(ctx, id)
	switch {
	case err == nil:
		v.Ats = &AtsView{
			AtsType:    string(r.AtsType),
			AtsURL:     optional(r.AtsURL),
			Confidence: r.Confidence,
			Method:     r.Method,
		}
	case !errors.Is(err, store.ErrNotFound):
		return View{}, fmt.Errorf("get ats resolution %s: %w", id, err)
	}
	return v, nil
}

// Delete removes a posting together with its captures and ATS resolutions in
// one transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	var captures, resolutions int64
	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		p, err := tx.GetPosting(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if captures, err = tx.DeleteCaptures(ctx, p.CaptureIDs); err != nil {
			return fmt.Errorf("delete captures: %w", err)
		}
		if resolutions, err = tx.DeleteAtsResolutions(ctx, p.ID); err != nil {
			return fmt.Errorf("delete ats resolutions: %w", err)
		}
		if _, err := tx.DeletePosting(ctx, p.ID); err != nil {
			return fmt.Errorf("delete posting: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.PostingsDeleted.Inc()
	log.Printf("[postings] deleted id=%s captures=%d ats_resolutions=%d", id, captures, resolutions)
	return nil
}

func toView(p domain.Posting) View {
	return View{
		ID:           p.ID,
		CanonicalURL: p.CanonicalURL,
		Company:      p.Company,
		JobTitle:     p.JobTitle,
		Location:     optional(p.Location),
		SourceHost:   p.SourceHost,
		Status:       string(p.Status),
		NextAction:   string(p.NextAction),
		AtsReqID:     optional(p.AtsReqID),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
