package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCSVExportURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "edit link with fragment gid",
			in:   "https://docs.google.com/spreadsheets/d/abc123/edit#gid=42",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=42",
		},
		{
			name: "query gid",
			in:   "https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing&gid=7",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=7",
		},
		{
			name: "default gid",
			in:   "https://docs.google.com/spreadsheets/d/abc123/view",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=0",
		},
		{
			name: "already an export",
			in:   "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=3",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CSVExportURL(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCSVExportURLRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/spreadsheets/d/abc/edit",
		"https://docs.google.com/document/d/abc/edit",
		"https://docs.google.com/spreadsheets/d/",
	} {
		if _, err := CSVExportURL(in); !errors.Is(err, ErrInvalidSheetURL) {
			t.Fatalf("%q: want ErrInvalidSheetURL, got %v", in, err)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("source_url,company\nhttps://a.example/1,Acme\n"))
		case "/login":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head><title>Sign in - Google Accounts</title></head><body></body></html>"))
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, NewHostLimiter(100, 10))
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/ok")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "source_url,company\nhttps://a.example/1,Acme\n" {
		t.Fatalf("body = %q", body)
	}

	if _, err := f.Fetch(ctx, srv.URL+"/private"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("non-200: want ErrFetchFailed, got %v", err)
	}

	_, err = f.Fetch(ctx, srv.URL+"/login")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("html page: want ErrFetchFailed, got %v", err)
	}
}

func TestHostLimiterHonorsContext(t *testing.T) {
	hl := NewHostLimiter(0.001, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := hl.WaitURL(ctx, "https://docs.google.com/a"); err != nil {
		t.Fatalf("first wait should use the burst: %v", err)
	}
	if err := hl.WaitURL(ctx, "https://docs.google.com/b"); err == nil {
		t.Fatal("second wait should fail once ctx expires")
	}
	if err := hl.WaitURL(context.Background(), "https://other.example/"); err != nil {
		t.Fatalf("other host has its own budget: %v", err)
	}
}
