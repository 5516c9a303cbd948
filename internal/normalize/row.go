package normalize

import (
	"strings"

	"jobintake-engine/internal/domain"
)

// Row reshapes a raw intake row into its normalized form. It never rejects.
func Row(raw domain.RawRow) domain.Row {
	return Clean(domain.Row{
		SourceSite:       raw.SourceSite,
		SourceURL:        raw.SourceURL,
		JobTitle:         raw.JobTitle,
		Company:          raw.Company,
		Location:         raw.Location,
		ApplyURLHint:     raw.ApplyURLHint,
		SeniorityHint:    raw.SeniorityHint,
		CompensationHint: raw.CompensationHint,
		Tags:             domain.Tags(raw.Tags),
		Notes:            raw.Notes,
	})
}

// Clean normalizes the text, URL and tag fields of r. Clean(Clean(r)) == Clean(r).
// CapturedAt and ImportBatchID pass through untouched.
func Clean(r domain.Row) domain.Row {
	r.SourceURL = CanonicalURL(r.SourceURL)

	if hint := strings.TrimSpace(r.ApplyURLHint); hint != "" {
		if HasTrackingParam(hint) {
			r.ApplyURLHintTracking = true
		}
		r.ApplyURLHint = CanonicalURL(hint)
	} else {
		r.ApplyURLHint = ""
	}

	r.JobTitle = CleanText(r.JobTitle)
	r.Company = CleanText(r.Company)
	r.Location = CleanText(r.Location)
	r.SeniorityHint = CleanText(r.SeniorityHint)
	r.CompensationHint = CleanText(r.CompensationHint)
	r.Notes = CleanText(r.Notes)
	r.SourceSite = CleanText(r.SourceSite)
	r.Tags = Tags(r.Tags)
	return r
}
