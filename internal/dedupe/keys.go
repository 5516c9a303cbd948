// Package dedupe derives the two identity fingerprints used to find an existing
// posting for a new capture.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/normalize"
)

// Algorithm names the digest behind every key. Changing it invalidates stored keys.
const Algorithm = "sha256/v1"

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// KeyExact identifies a posting by its exact canonical URL.
func KeyExact(canonicalURL string) string {
	return hashString(canonicalURL)
}

// KeyCompanyTitleHost identifies a posting by the (company, title, host) triple,
// ignoring case and surrounding whitespace.
func KeyCompanyTitleHost(company, title, host string) string {
	c := strings.ToLower(strings.TrimSpace(company))
	t := strings.ToLower(strings.TrimSpace(title))
	h := strings.ToLower(strings.TrimSpace(host))
	return hashString(c + "|" + t + "|" + h)
}

type RowKeys struct {
	CanonicalURL     string
	Host             string
	Exact            string
	CompanyTitleHost string
}

// Keys computes both fingerprints for a normalized row. The host comes from the
// same canonical URL the posting will store.
func Keys(row domain.Row) RowKeys {
	host := normalize.HostOf(row.SourceURL)
	return RowKeys{
		CanonicalURL:     row.SourceURL,
		Host:             host,
		Exact:            KeyExact(row.SourceURL),
		CompanyTitleHost: KeyCompanyTitleHost(row.Company, row.JobTitle, host),
	}
}
