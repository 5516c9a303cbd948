package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// RawTags accepts either a JSON array of strings or a single delimited string.
type RawTags []string

func (t *RawTags) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*t = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var xs []string
		if err := json.Unmarshal(b, &xs); err != nil {
			return err
		}
		*t = xs
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*t = RawTags{one}
	return nil
}

// RawRow is one intake row as received from a CSV header map, a sheet export or
// an extension batch. Nothing in it has been cleaned yet.
type RawRow struct {
	SourceSite       string  `json:"source_site"`
	SourceURL        string  `json:"source_url"`
	JobTitle         string  `json:"job_title"`
	Company          string  `json:"company"`
	Location         string  `json:"location"`
	ApplyURLHint     string  `json:"apply_url_hint"`
	SeniorityHint    string  `json:"seniority_hint"`
	CompensationHint string  `json:"compensation_hint"`
	Tags             RawTags `json:"tags"`
	Notes            string  `json:"notes"`
	CapturedAt       string  `json:"captured_at"`
}

// RawRowFromMap maps header-keyed values (CSV DictReader style) onto a RawRow.
// Unknown keys are ignored.
func RawRowFromMap(m map[string]string) RawRow {
	r := RawRow{
		SourceSite:       m["source_site"],
		SourceURL:        m["source_url"],
		JobTitle:         m["job_title"],
		Company:          m["company"],
		Location:         m["location"],
		ApplyURLHint:     m["apply_url_hint"],
		SeniorityHint:    m["seniority_hint"],
		CompensationHint: m["compensation_hint"],
		Notes:            m["notes"],
		CapturedAt:       m["captured_at"],
	}
	if v, ok := m["tags"]; ok {
		r.Tags = RawTags{v}
	}
	return r
}

// Row is a normalized intake row. Empty strings mean "absent".
type Row struct {
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

	// ApplyURLHintTracking is set when the hint, as first received, carried
	// tracking parameters that canonicalization has since removed.
	ApplyURLHintTracking bool

	CapturedAt    time.Time
	ImportBatchID string
}
