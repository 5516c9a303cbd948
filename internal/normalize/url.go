package normalize

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// tracking params dropped from every canonical URL; any utm_* key is dropped too.
var trackingParams = map[string]bool{
	"gclid":      true,
	"fbclid":     true,
	"msclkid":    true,
	"mc_cid":     true,
	"mc_eid":     true,
	"igshid":     true,
	"utm_id":     true,
	"utm_reader": true,
}

// substrings that mark a URL as carrying tracking params before cleanup
var trackingNeedles = []string{"utm_", "gclid", "fbclid", "msclkid", "mc_cid", "mc_eid", "igshid"}

var multiSlash = regexp.MustCompile(`/{2,}`)

func isTrackingParam(k string) bool {
	lk := strings.ToLower(k)
	return strings.HasPrefix(lk, "utm_") || trackingParams[lk]
}

// CanonicalURL returns a stable, comparable form of raw. Input that does not
// parse as a URL comes back trimmed but otherwise untouched.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Host = strings.ToLower(u.Host)

	u.RawQuery = canonicalQuery(u.RawQuery)
	u.ForceQuery = false

	if u.Opaque == "" {
		p := multiSlash.ReplaceAllString(u.EscapedPath(), "/")
		if p == "" && u.Host != "" {
			p = "/"
		}
		if p != "/" && strings.HasSuffix(p, "/") {
			p = strings.TrimSuffix(p, "/")
		}
		if unesc, err := url.PathUnescape(p); err == nil {
			u.Path = unesc
			u.RawPath = p
		}
	}

	if f := strings.ToLower(u.Fragment); strings.HasPrefix(f, "utm_") || strings.HasPrefix(f, "ref") {
		u.Fragment = ""
		u.RawFragment = ""
	}

	return u.String()
}

type queryPair struct {
	key, val string // decoded when possible, raw otherwise
	text     string // rendered form
}

// canonicalQuery drops tracking and blank params and sorts the rest by key and
// value. Pairs are split on '&' only; a pair whose escapes do not decode is
// kept verbatim.
func canonicalQuery(raw string) string {
	if raw == "" {
		return ""
	}
	var pairs []queryPair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		rk, rv, _ := strings.Cut(part, "=")
		k, kerr := url.QueryUnescape(rk)
		v, verr := url.QueryUnescape(rv)
		if kerr != nil || verr != nil {
			if isTrackingParam(rk) || strings.TrimSpace(rv) == "" {
				continue
			}
			pairs = append(pairs, queryPair{key: rk, val: rv, text: part})
			continue
		}
		if isTrackingParam(k) || strings.TrimSpace(v) == "" {
			continue
		}
		pairs = append(pairs, queryPair{key: k, val: v, text: url.QueryEscape(k) + "=" + url.QueryEscape(v)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].val < pairs[j].val
	})
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.text
	}
	return strings.Join(out, "&")
}

// HostOf returns the lower-cased host of u, or "" when u has none.
func HostOf(u string) string {
	p, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return ""
	}
	return strings.ToLower(p.Host)
}

// HasTrackingParam reports whether raw contains a tracking-parameter substring.
func HasTrackingParam(raw string) bool {
	lr := strings.ToLower(raw)
	for _, n := range trackingNeedles {
		if strings.Contains(lr, n) {
			return true
		}
	}
	return false
}
