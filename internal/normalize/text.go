package normalize

import (
	"regexp"
	"sort"
	"strings"

	"jobintake-engine/internal/domain"
)

// CleanText collapses whitespace runs to one space and trims. A result of ""
// means the field is absent.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

var tagSep = regexp.MustCompile(`[;,|\n]+`)

// Tags splits every value on ; , | or newline, lower-cases, trims, drops
// empties and duplicates, and sorts. The result is never nil.
func Tags(in []string) domain.Tags {
	seen := map[string]bool{}
	out := domain.Tags{}
	for _, v := range in {
		for _, part := range tagSep.Split(v, -1) {
			t := strings.ToLower(strings.TrimSpace(part))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
