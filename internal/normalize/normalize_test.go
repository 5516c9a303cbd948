package normalize

import (
	"reflect"
	"testing"
	"time"

	"jobintake-engine/internal/domain"
)

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://Example.com/Job?utm_source=x&id=5", "https://example.com/Job?id=5"},
		{"  https://Jobs.Example.com//a//b/?utm_source=x&b=2&a=1&empty=  ", "https://jobs.example.com/a/b?a=1&b=2"},
		{"https://example.com?gclid=1&fbclid=2", "https://example.com/"},
		{"https://example.com/p?x=2&x=1", "https://example.com/p?x=1&x=2"},
		{"https://example.com/p#utm_campaign=z", "https://example.com/p"},
		{"https://example.com/p#ref=home", "https://example.com/p"},
		{"https://example.com/p#section-2", "https://example.com/p#section-2"},
		{"https://example.com/a%20b/", "https://example.com/a%20b"},
		{"https://example.com/job?UTM_SOURCE=x&GCLID=1&id=5", "https://example.com/job?id=5"},
		{"https://example.com/job?id=5&Utm_Campaign=y&FbClid=z", "https://example.com/job?id=5"},
		{"https://example.com/job?id=5;ref=2", "https://example.com/job?id=5%3Bref%3D2"},
		{"https://example.com/job?id=%zz", "https://example.com/job?id=%zz"},
		{"https://example.com/job?q=50%", "https://example.com/job?q=50%"},
		{"https://example.com/job?b=%zz&a=1&utm_x=%zz", "https://example.com/job?a=1&b=%zz"},
		{"", ""},
	}
	for _, tc := range cases {
		got := CanonicalURL(tc.in)
		if got != tc.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := CanonicalURL(got); again != got {
			t.Errorf("CanonicalURL not stable for %q: %q then %q", tc.in, got, again)
		}
	}
}

func TestCanonicalURLKeepsUndecodableQuery(t *testing.T) {
	bare := CanonicalURL("https://example.com/job")
	for _, in := range []string{
		"https://example.com/job?id=5;ref=2",
		"https://example.com/job?id=%zz",
		"https://example.com/job?q=50%",
	} {
		if got := CanonicalURL(in); got == bare {
			t.Errorf("CanonicalURL(%q) collapsed to %q", in, bare)
		}
	}
	if CanonicalURL("https://example.com/job?id=%zz") == CanonicalURL("https://example.com/job?id=%yy") {
		t.Fatal("distinct undecodable queries share a canonical form")
	}
}

func TestHostOf(t *testing.T) {
	if got := HostOf("https://Boards.Greenhouse.io/acme/jobs/1"); got != "boards.greenhouse.io" {
		t.Fatalf("HostOf = %q", got)
	}
	if got := HostOf("no host here"); got != "" {
		t.Fatalf("HostOf = %q", got)
	}
}

func TestCleanTextAndTags(t *testing.T) {
	if got := CleanText("  Senior  Engineer \n\t II "); got != "Senior Engineer II" {
		t.Fatalf("CleanText = %q", got)
	}
	if got := CleanText(" \t\n "); got != "" {
		t.Fatalf("blank CleanText = %q", got)
	}

	got := Tags([]string{"Go; Remote", "go|Backend,,", "\n"})
	want := domain.Tags{"backend", "go", "remote"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
	if empty := Tags(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("Tags(nil) = %#v", empty)
	}
}

func TestRowExample(t *testing.T) {
	r := Row(domain.RawRow{
		SourceURL: "https://Example.com/Job?utm_source=x&id=5",
		Company:   " Acme ",
		JobTitle:  "Engineer",
		Tags:      domain.RawTags{"Go, Remote"},
	})
	if r.SourceURL != "https://example.com/Job?id=5" {
		t.Fatalf("SourceURL = %q", r.SourceURL)
	}
	if r.Company != "Acme" || r.JobTitle != "Engineer" {
		t.Fatalf("company/title = %q/%q", r.Company, r.JobTitle)
	}
	if !reflect.DeepEqual(r.Tags, domain.Tags{"go", "remote"}) {
		t.Fatalf("Tags = %v", r.Tags)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	once := Row(domain.RawRow{
		SourceSite:   " LinkedIn ",
		SourceURL:    "HTTPS://www.Example.com//jobs/42/?utm_medium=social&ref=abc",
		JobTitle:     " Staff   Engineer ",
		Company:      "Acme Corp",
		Location:     " Remote ",
		ApplyURLHint: "https://apply.example.com/42?gclid=abc",
		Tags:         domain.RawTags{"b;a", "A"},
		Notes:        "  referred\n by  Sam ",
	})
	twice := Clean(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Clean not idempotent:\n once=%+v\ntwice=%+v", once, twice)
	}
	if !once.ApplyURLHintTracking || once.ApplyURLHint != "https://apply.example.com/42" {
		t.Fatalf("hint = %q tracking=%v", once.ApplyURLHint, once.ApplyURLHintTracking)
	}
}

func TestBlankHintIsAbsent(t *testing.T) {
	r := Row(domain.RawRow{SourceURL: "https://example.com/1", ApplyURLHint: "   "})
	if r.ApplyURLHint != "" || r.ApplyURLHintTracking {
		t.Fatalf("hint = %q tracking=%v", r.ApplyURLHint, r.ApplyURLHintTracking)
	}
}

func TestParseCapturedAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 999, time.FixedZone("X", 3600))

	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-05-01T12:30:00Z", time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), true},
		{"2024-05-01T12:30:00.750Z", time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), true},
		{"2024-05-01T12:30:00+02:00", time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), true},
		{"2024-05-01 12:30:00", time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), true},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
		{"2024-13-01", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseCapturedAt(tc.in, now)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Errorf("ParseCapturedAt(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
		if ok && got.Location() != time.UTC {
			t.Errorf("ParseCapturedAt(%q) location = %v", tc.in, got.Location())
		}
	}
}
