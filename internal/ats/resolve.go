// Package ats recognizes applicant-tracking systems from posting URLs and
// records the result as an AtsResolution.
package ats

import (
	"net/url"
	"regexp"
	"strings"

	"jobintake-engine/internal/domain"
)

// Match is what a URL pattern says about a posting.
type Match struct {
	Type       domain.ATSType
	ReqID      string
	Confidence float64
}

type pattern struct {
	typ        domain.ATSType
	hosts      []string // exact host or ".suffix"
	confidence float64
	reqID      func(u *url.URL) string
}

var (
	digitsSeg   = regexp.MustCompile(`/(?:jobs|careers|job)/(\d+)`)
	uuidSeg     = regexp.MustCompile(`/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
	workdayTail = regexp.MustCompile(`_([A-Za-z]*-?\d+)(?:-\d+)?$`)
	srSeg       = regexp.MustCompile(`^/[^/]+/(\d+)`)
)

func findFirst(re *regexp.Regexp) func(*url.URL) string {
	return func(u *url.URL) string {
		if m := re.FindStringSubmatch(u.Path); len(m) > 1 {
			return m[1]
		}
		return ""
	}
}

func queryOr(key string, next func(*url.URL) string) func(*url.URL) string {
	return func(u *url.URL) string {
		if v := u.Query().Get(key); v != "" {
			return v
		}
		if next == nil {
			return ""
		}
		return next(u)
	}
}

var patterns = []pattern{
	{domain.ATSGreenhouse, []string{"boards.greenhouse.io", "job-boards.greenhouse.io", ".greenhouse.io"}, 0.95, queryOr("gh_jid", findFirst(digitsSeg))},
	{domain.ATSLever, []string{"jobs.lever.co", "jobs.eu.lever.co"}, 0.95, findFirst(uuidSeg)},
	{domain.ATSWorkday, []string{".myworkdayjobs.com", ".myworkdaysite.com"}, 0.9, findFirst(workdayTail)},
	{domain.ATSSmartRecruiters, []string{"jobs.smartrecruiters.com", "careers.smartrecruiters.com"}, 0.9, findFirst(srSeg)},
	{domain.ATSAshby, []string{"jobs.ashbyhq.com"}, 0.9, findFirst(uuidSeg)},
	{domain.ATSICIMS, []string{".icims.com"}, 0.85, findFirst(digitsSeg)},
	{domain.ATSBambooHR, []string{".bamboohr.com"}, 0.85, queryOr("id", findFirst(digitsSeg))},
	{domain.ATSTeamtailor, []string{".teamtailor.com"}, 0.85, findFirst(regexp.MustCompile(`/jobs/(\d+)`))},
	{domain.ATSTaleo, []string{".taleo.net"}, 0.8, queryOr("job", nil)},
}

func hostMatches(host string, candidates []string) bool {
	for _, c := range candidates {
		if strings.HasPrefix(c, ".") {
			if strings.HasSuffix(host, c) {
				return true
			}
			continue
		}
		if host == c {
			return true
		}
	}
	return false
}

// Resolve classifies a canonical posting URL. Unrecognized hosts return
// ATSUnknown with zero confidence.
func Resolve(rawURL string) Match {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Match{Type: domain.ATSUnknown}
	}
	host := strings.ToLower(u.Hostname())

	for _, p := range patterns {
		if !hostMatches(host, p.hosts) {
			continue
		}
		m := Match{Type: p.typ, Confidence: p.confidence}
		if p.reqID != nil {
			m.ReqID = p.reqID(u)
		}
		return m
	}
	// greenhouse embeds on company career pages
	if v := u.Query().Get("gh_jid"); v != "" {
		return Match{Type: domain.ATSGreenhouse, ReqID: v, Confidence: 0.7}
	}
	return Match{Type: domain.ATSUnknown}
}
