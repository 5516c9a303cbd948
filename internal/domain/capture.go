package domain

import "time"

// Capture is one accepted sighting of a posting. Immutable once written.
type Capture struct {
	ID               string
	SourceSite       string
	SourceURL        string
	JobTitle         string
	Company          string
	Location         string
	ApplyURLHint     string
	SeniorityHint    string
	CompensationHint string
	Tags             Tags
	Notes            string
	CapturedAt       time.Time
	ImportBatchID    string
	HardErrors       []string
	SoftWarnings     []string
}

// CaptureFromRow copies a normalized row into a capture with the given id.
func CaptureFromRow(id string, r Row, hard, soft []string) Capture {
	return Capture{
		ID:               id,
		SourceSite:       r.SourceSite,
		SourceURL:        r.SourceURL,
		JobTitle:         r.JobTitle,
		Company:          r.Company,
		Location:         r.Location,
		ApplyURLHint:     r.ApplyURLHint,
		SeniorityHint:    r.SeniorityHint,
		CompensationHint: r.CompensationHint,
		Tags:             r.Tags,
		Notes:            r.Notes,
		CapturedAt:       r.CapturedAt.UTC(),
		ImportBatchID:    r.ImportBatchID,
		HardErrors:       hard,
		SoftWarnings:     soft,
	}
}
