package importer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"jobintake-engine/internal/dedupe"
	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/sheets"
	"jobintake-engine/internal/store"
	"jobintake-engine/internal/validate"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 15, 500, time.UTC)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "intake.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newPipeline(db *store.DB, opts ...PipelineOption) *Pipeline {
	opts = append([]PipelineOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewPipeline(db, opts...)
}

func counts(t *testing.T, db *store.DB) (captures, postings int) {
	t.Helper()
	ctx := context.Background()
	c, err := db.CountCaptures(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p, err := db.CountPostings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return c, p
}

func TestImportExampleRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := newPipeline(db).ImportBatch(ctx, []domain.RawRow{{
		SourceURL: "https://Example.com/Job?utm_source=x&id=5",
		Company:   " Acme ",
		JobTitle:  "Engineer",
	}}, false, "batch-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted != 1 || res.Quarantined != 0 || len(res.WarningsByRow) != 0 || res.BatchID != "batch-1" {
		t.Fatalf("unexpected result: %+v", res)
	}

	p, err := db.FindPostingByExactKey(ctx, dedupe.KeyExact("https://example.com/Job?id=5"))
	if err != nil {
		t.Fatalf("posting not stored under canonical url: %v", err)
	}
	if p.Company != "Acme" || p.SourceHost != "example.com" || len(p.CaptureIDs) != 1 {
		t.Fatalf("unexpected posting: %+v", p)
	}

	c, err := db.GetCapture(ctx, p.CaptureIDs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !c.CapturedAt.Equal(fixedNow.Truncate(time.Second)) || c.ImportBatchID != "batch-1" {
		t.Fatalf("capture defaults: at=%s batch=%s", c.CapturedAt, c.ImportBatchID)
	}
}

func TestImportReportsWarningsAndQuarantine(t *testing.T) {
	db := openTestDB(t)

	res, err := newPipeline(db).ImportBatch(context.Background(), []domain.RawRow{
		{SourceURL: "https://jobs.example.com/1", Company: "Acme", JobTitle: "Engineer"},
		{SourceURL: ""},
		{SourceURL: "https://jobs.example.com/2", Company: "Acme"},
		{SourceURL: "https://jobs.example.com/3", Company: "Acme", JobTitle: "Eng", CapturedAt: "last tuesday"},
		{SourceURL: "https://jobs.example.com/4", Company: "Acme", JobTitle: "Eng", ApplyURLHint: "https://apply.example.com/x?utm_source=li"},
	}, false, "")
	if err != nil {
		t.Fatal(err)
	}

	if res.Accepted != 3 || res.Quarantined != 2 {
		t.Fatalf("accepted=%d quarantined=%d", res.Accepted, res.Quarantined)
	}
	if res.BatchID == "" {
		t.Fatal("batch id not generated")
	}

	wantErrs := []RowErrors{
		{RowIndex: 1, Errors: []string{validate.InvalidSourceURL}},
		{RowIndex: 3, Errors: []string{validate.InvalidCapturedAt}},
	}
	if len(res.ErrorsByRow) != len(wantErrs) {
		t.Fatalf("errors_by_row = %+v", res.ErrorsByRow)
	}
	for i, want := range wantErrs {
		got := res.ErrorsByRow[i]
		if got.RowIndex != want.RowIndex || strings.Join(got.Errors, ",") != strings.Join(want.Errors, ",") {
			t.Fatalf("errors_by_row[%d] = %+v, want %+v", i, got, want)
		}
	}

	warned := map[int]string{}
	for _, w := range res.WarningsByRow {
		warned[w.RowIndex] = strings.Join(w.Warnings, ",")
	}
	if warned[1] != validate.MissingCompany+","+validate.MissingJobTitle {
		t.Fatalf("quarantined row warnings = %q", warned[1])
	}
	if warned[2] != validate.MissingJobTitle {
		t.Fatalf("row 2 warnings = %q", warned[2])
	}
	if warned[4] != validate.ApplyURLHintContainsTracking {
		t.Fatalf("row 4 warnings = %q", warned[4])
	}
	if _, ok := warned[0]; ok {
		t.Fatal("clean row reported warnings")
	}

	c, p := counts(t, db)
	if c != 3 || p != 3 {
		t.Fatalf("captures=%d postings=%d", c, p)
	}
}

func TestDryRunHasNoSideEffects(t *testing.T) {
	db := openTestDB(t)
	rows := []domain.RawRow{
		{SourceURL: "https://jobs.example.com/1", Company: "Acme", JobTitle: "Engineer"},
		{SourceURL: "https://jobs.example.com/2", Company: "Acme", JobTitle: "Designer"},
		{SourceURL: "https://jobs.example.com/1", Company: "Acme", JobTitle: "Engineer"},
	}

	res, err := newPipeline(db).ImportBatch(context.Background(), rows, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted != len(rows) {
		t.Fatalf("accepted = %d, want %d", res.Accepted, len(rows))
	}
	if c, p := counts(t, db); c != 0 || p != 0 {
		t.Fatalf("dry run wrote captures=%d postings=%d", c, p)
	}
}

func TestImportSameURLTwice(t *testing.T) {
	db := openTestDB(t)
	pl := newPipeline(db)
	ctx := context.Background()
	row := domain.RawRow{SourceURL: "https://jobs.example.com/1?gclid=abc", Company: "Acme", JobTitle: "Engineer"}

	for i := 0; i < 2; i++ {
		if _, err := pl.ImportBatch(ctx, []domain.RawRow{row}, false, ""); err != nil {
			t.Fatal(err)
		}
	}

	c, p := counts(t, db)
	if c != 2 || p != 1 {
		t.Fatalf("captures=%d postings=%d, want 2 and 1", c, p)
	}
}

func TestStorageFailureRollsBackBatch(t *testing.T) {
	db := openTestDB(t)
	// every capture gets the same id, so the second insert violates the key
	pl := newPipeline(db, WithIDs(func() string { return "same" }))

	res, err := pl.ImportBatch(context.Background(), []domain.RawRow{
		{SourceURL: "https://jobs.example.com/1", Company: "Acme", JobTitle: "Engineer"},
		{SourceURL: "https://jobs.example.com/2", Company: "Acme", JobTitle: "Designer"},
	}, false, "batch-x")
	if err == nil {
		t.Fatal("expected storage error")
	}
	if !strings.Contains(err.Error(), "batch-x") {
		t.Fatalf("error should name the batch: %v", err)
	}
	if res.BatchID != "batch-x" {
		t.Fatalf("partial report lost batch id: %+v", res)
	}
	if c, p := counts(t, db); c != 0 || p != 0 {
		t.Fatalf("rollback left captures=%d postings=%d", c, p)
	}
}

func TestCancelledContextWritesNothing(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(db).ImportBatch(ctx, []domain.RawRow{
		{SourceURL: "https://jobs.example.com/1", Company: "Acme", JobTitle: "Engineer"},
	}, false, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if c, p := counts(t, db); c != 0 || p != 0 {
		t.Fatalf("captures=%d postings=%d", c, p)
	}
}

func TestParseCSV(t *testing.T) {
	data := "\uFEFFsource_url, company ,job_title,tags,extra\n" +
		"https://a.example/1,Acme,Engineer,\"go; remote\",x\n" +
		"https://a.example/2,Globex\n"

	rows, err := ParseCSV([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Company != "Acme" || len(rows[0].Tags) != 1 || rows[0].Tags[0] != "go; remote" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].Company != "Globex" || rows[1].JobTitle != "" || rows[1].Tags != nil {
		t.Fatalf("row 1 = %+v", rows[1])
	}

	empty, err := ParseCSV(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty input: %v %v", empty, err)
	}

	for _, bad := range []string{
		"source_url,company\n\"https://a.example/1,Acme\n",
		"source_url,company\nhttps://a.example/1,Ac\"me\n",
	} {
		if _, err := ParseCSV([]byte(bad)); !errors.Is(err, ErrMalformedCSV) {
			t.Fatalf("%q: want ErrMalformedCSV, got %v", bad, err)
		}
	}
}

type fakeFetcher struct {
	body []byte
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) ([]byte, error) {
	f.urls = append(f.urls, u)
	return f.body, f.err
}

type recordingArchiver struct {
	mu   sync.Mutex
	keys []string
}

func (a *recordingArchiver) Put(_ context.Context, key, _ string, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return nil
}

func TestServiceImportSheet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	f := &fakeFetcher{body: []byte("source_url,company,job_title\nhttps://a.example/1,Acme,Engineer\n")}
	arch := &recordingArchiver{}
	svc := NewService(newPipeline(db), f, arch, 0)

	res, err := svc.ImportSheet(ctx, "https://docs.google.com/spreadsheets/d/abc/edit#gid=5", Options{BatchID: "b1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted != 1 {
		t.Fatalf("accepted = %d", res.Accepted)
	}
	if len(f.urls) != 1 || f.urls[0] != "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=5" {
		t.Fatalf("fetched %v", f.urls)
	}
	if len(arch.keys) != 1 || !strings.HasSuffix(arch.keys[0], "/b1-google_sheet.csv") {
		t.Fatalf("archived %v", arch.keys)
	}

	if _, err := svc.ImportSheet(ctx, "https://example.com/not-a-sheet", Options{}); !errors.Is(err, sheets.ErrInvalidSheetURL) {
		t.Fatalf("want ErrInvalidSheetURL, got %v", err)
	}
	if len(f.urls) != 1 {
		t.Fatal("invalid url must not be fetched")
	}

	f.err = sheets.ErrFetchFailed
	if _, err := svc.ImportSheet(ctx, "https://docs.google.com/spreadsheets/d/abc/edit", Options{}); !errors.Is(err, sheets.ErrFetchFailed) {
		t.Fatalf("want ErrFetchFailed, got %v", err)
	}
	if c, _ := counts(t, db); c != 1 {
		t.Fatalf("failed fetch wrote captures: %d", c)
	}
}

func TestServiceDryRunSkipsArchive(t *testing.T) {
	db := openTestDB(t)
	arch := &recordingArchiver{}
	svc := NewService(newPipeline(db), nil, arch, 0)

	rows := []domain.RawRow{{SourceURL: "https://a.example/1", Company: "Acme", JobTitle: "Engineer"}}
	if _, err := svc.ImportRows(context.Background(), rows, Options{DryRun: true}); err != nil {
		t.Fatal(err)
	}
	if len(arch.keys) != 0 {
		t.Fatalf("dry run archived %v", arch.keys)
	}
	if _, err := svc.ImportRows(context.Background(), rows, Options{}); err != nil {
		t.Fatal(err)
	}
	if len(arch.keys) != 1 || !strings.HasSuffix(arch.keys[0], "-rows.json") {
		t.Fatalf("archived %v", arch.keys)
	}
}

func TestServiceRejectsOversizedBatch(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(newPipeline(db), nil, nil, 1)

	_, err := svc.ImportCSV(context.Background(), []byte("source_url\nhttps://a.example/1\nhttps://a.example/2\n"), Options{})
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("want ErrTooManyRows, got %v", err)
	}
	if _, err := svc.ImportCSV(context.Background(), []byte("source_url\n\"broken\n"), Options{}); !errors.Is(err, ErrMalformedCSV) {
		t.Fatalf("want ErrMalformedCSV, got %v", err)
	}
}
