package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobintake-engine/internal/normalize"
)

var ErrFetchFailed = errors.New("failed to fetch sheet csv")

const maxSheetBytes = 32 << 20

type Fetcher struct {
	hc      *http.Client
	limiter *HostLimiter
}

// NewFetcher builds a fetcher that follows redirects and gives up after timeout.
// limiter may be nil.
func NewFetcher(timeout time.Duration, limiter *HostLimiter) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Fetch downloads a CSV export. A non-200 status, or an HTML page where CSV
// was expected (private sheets redirect to a sign-in page), is ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, exportURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, exportURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "JobIntake/1.0 (+local)")
	req.Header.Set("Accept", "text/csv, */*;q=0.5")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxSheetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if looksLikeHTML(res.Header.Get("Content-Type"), body) {
		return nil, fmt.Errorf("%w: got an HTML page %q instead of CSV; is the sheet shared?", ErrFetchFailed, pageTitle(body))
	}
	return body, nil
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.TrimSpace(body)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
}

func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return normalize.CleanText(doc.Find("title").First().Text())
}
