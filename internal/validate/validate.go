// Package validate classifies normalized intake rows into hard errors and soft
// warnings. It performs no I/O.
package validate

import (
	"net/url"

	"jobintake-engine/internal/domain"
)

// Hard errors: the row is quarantined.
const (
	InvalidSourceURL  = "invalid_source_url"
	InvalidCapturedAt = "invalid_captured_at"
)

// Soft warnings: the row is accepted.
const (
	MissingCompany               = "missing_company"
	MissingJobTitle              = "missing_job_title"
	ApplyURLHintContainsTracking = "apply_url_hint_contains_tracking"
)

type Result struct {
	HardErrors   []string `json:"errors"`
	SoftWarnings []string `json:"warnings"`
}

func (r *Result) addErr(code string)  { r.HardErrors = append(r.HardErrors, code) }
func (r *Result) addWarn(code string) { r.SoftWarnings = append(r.SoftWarnings, code) }

// OK reports whether the row may be persisted.
func (r Result) OK() bool { return len(r.HardErrors) == 0 }

// Row validates a normalized row.
func Row(row domain.Row) Result {
	var res Result

	if !validSourceURL(row.SourceURL) {
		res.addErr(InvalidSourceURL)
	}
	if row.CapturedAt.IsZero() {
		res.addErr(InvalidCapturedAt)
	}

	if row.Company == "" {
		res.addWarn(MissingCompany)
	}
	if row.JobTitle == "" {
		res.addWarn(MissingJobTitle)
	}
	if row.ApplyURLHint != "" && row.ApplyURLHintTracking {
		res.addWarn(ApplyURLHintContainsTracking)
	}

	return res
}

func validSourceURL(u string) bool {
	if u == "" {
		return false
	}
	p, err := url.Parse(u)
	if err != nil {
		return false
	}
	return (p.Scheme == "http" || p.Scheme == "https") && p.Host != ""
}
