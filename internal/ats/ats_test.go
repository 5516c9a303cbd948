package ats

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"jobintake-engine/internal/dedupe"
	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/metrics"
	"jobintake-engine/internal/store"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		url   string
		typ   domain.ATSType
		reqID string
	}{
		{"https://boards.greenhouse.io/acme/jobs/4012345", domain.ATSGreenhouse, "4012345"},
		{"https://job-boards.greenhouse.io/acme/jobs/55?gh_src=x", domain.ATSGreenhouse, "55"},
		{"https://acme.com/careers/open?gh_jid=777", domain.ATSGreenhouse, "777"},
		{"https://jobs.lever.co/acme/0b7a1c2e-1234-4abc-9def-0123456789ab", domain.ATSLever, "0b7a1c2e-1234-4abc-9def-0123456789ab"},
		{"https://transunion.wd5.myworkdayjobs.com/en-GB/TransUnion/job/Alderley-Edge/Senior-Systems-Developer_19035213", domain.ATSWorkday, "19035213"},
		{"https://acme.wd1.myworkdayjobs.com/External/job/Remote/Engineer_R-12345-1", domain.ATSWorkday, "R-12345"},
		{"https://jobs.smartrecruiters.com/Acme/743999912345678-senior-engineer", domain.ATSSmartRecruiters, "743999912345678"},
		{"https://jobs.ashbyhq.com/acme/0b7a1c2e-1234-4abc-9def-0123456789ab", domain.ATSAshby, "0b7a1c2e-1234-4abc-9def-0123456789ab"},
		{"https://careers-acme.icims.com/jobs/12345/engineer/job", domain.ATSICIMS, "12345"},
		{"https://acme.bamboohr.com/careers/42", domain.ATSBambooHR, "42"},
		{"https://acme.teamtailor.com/jobs/12345-engineer", domain.ATSTeamtailor, "12345"},
		{"https://acme.taleo.net/careersection/2/jobdetail.ftl?job=ABC123", domain.ATSTaleo, "ABC123"},
		{"https://example.com/jobs/1", domain.ATSUnknown, ""},
		{"not a url", domain.ATSUnknown, ""},
	}
	for _, tc := range cases {
		m := Resolve(tc.url)
		if m.Type != tc.typ || m.ReqID != tc.reqID {
			t.Errorf("Resolve(%q) = %+v, want %s/%q", tc.url, m, tc.typ, tc.reqID)
		}
		if (m.Type == domain.ATSUnknown) != (m.Confidence == 0) {
			t.Errorf("Resolve(%q) confidence = %v", tc.url, m.Confidence)
		}
	}
}

func seed(t *testing.T, db *store.DB, id, url string, status domain.Status) {
	t.Helper()
	ctx := context.Background()
	row := domain.Row{SourceURL: url, Company: "Acme", JobTitle: "Engineer"}
	k := dedupe.Keys(row)
	err := db.WithTx(ctx, func(tx *store.Tx) error {
		return tx.InsertPosting(ctx, domain.Posting{
			ID:                        id,
			CanonicalURL:              k.CanonicalURL,
			Company:                   row.Company,
			JobTitle:                  row.JobTitle,
			SourceHost:                k.Host,
			Status:                    status,
			NextAction:                domain.NextRetryFetch,
			CaptureIDs:                domain.IDSet{},
			DedupeKeyExact:            k.Exact,
			DedupeKeyCompanyTitleHost: k.CompanyTitleHost,
		})
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestResolverRunOnce(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "intake.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	seed(t, db, "p1", "https://boards.greenhouse.io/acme/jobs/4012345", domain.StatusNew)
	seed(t, db, "p2", "https://example.com/jobs/2", domain.StatusNew)
	seed(t, db, "p3", "https://jobs.lever.co/acme/0b7a1c2e-1234-4abc-9def-0123456789ab", domain.StatusNeedsReview)

	before := testutil.ToFloat64(metrics.AtsResolutions.WithLabelValues(string(domain.ATSGreenhouse)))

	r := NewResolver(db)
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return at }

	n, err := r.RunOnce(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("resolved = %d, want 3", n)
	}

	if d := testutil.ToFloat64(metrics.AtsResolutions.WithLabelValues(string(domain.ATSGreenhouse))) - before; d != 1 {
		t.Fatalf("greenhouse resolutions counter moved by %v", d)
	}

	p1, err := db.GetPosting(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if p1.Status != domain.StatusResolvedATS || p1.AtsReqID != "4012345" {
		t.Fatalf("p1 = %s/%q", p1.Status, p1.AtsReqID)
	}
	if p1.LastCheckedAt == nil || !p1.LastCheckedAt.Equal(at) {
		t.Fatalf("p1 last_checked_at = %v", p1.LastCheckedAt)
	}
	res, err := db.GetAtsResolution(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.AtsType != domain.ATSGreenhouse || res.Method != MethodPattern || res.AtsURL != p1.CanonicalURL {
		t.Fatalf("p1 resolution = %+v", res)
	}

	p2, _ := db.GetPosting(ctx, "p2")
	if p2.Status != domain.StatusNew || p2.AtsReqID != "" {
		t.Fatalf("p2 = %s/%q", p2.Status, p2.AtsReqID)
	}
	if res, err := db.GetAtsResolution(ctx, "p2"); err != nil || res.AtsType != domain.ATSUnknown || res.AtsURL != "" {
		t.Fatalf("p2 resolution = %+v, %v", res, err)
	}

	// status only advances from new
	p3, _ := db.GetPosting(ctx, "p3")
	if p3.Status != domain.StatusNeedsReview {
		t.Fatalf("p3 status = %s", p3.Status)
	}

	n, err = r.RunOnce(ctx, 10)
	if err != nil || n != 0 {
		t.Fatalf("second run = %d, %v", n, err)
	}
}

func TestResolverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db, err := store.Open(filepath.Join(t.TempDir(), "intake.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	seed(t, db, "p1", "https://example.com/jobs/1", domain.StatusNew)

	cancel()
	if _, err := NewResolver(db).RunOnce(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
