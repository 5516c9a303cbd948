// Package sheets turns Google Sheets links into CSV exports and fetches them.
package sheets

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidSheetURL = errors.New("invalid google sheet url")

// CSVExportURL translates a Google Sheets viewer or edit link into its CSV
// export link. Links that already point at a CSV export pass through.
func CSVExportURL(sheetURL string) (string, error) {
	sheetURL = strings.TrimSpace(sheetURL)
	if sheetURL == "" {
		return "", fmt.Errorf("%w: sheet_url is required", ErrInvalidSheetURL)
	}
	if strings.Contains(sheetURL, "export") && strings.Contains(sheetURL, "format=csv") {
		return sheetURL, nil
	}

	u, err := url.Parse(sheetURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSheetURL, err)
	}
	if u.Host != "docs.google.com" {
		return "", fmt.Errorf("%w: not a Google Sheets URL", ErrInvalidSheetURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "spreadsheets" || parts[1] != "d" || parts[2] == "" {
		return "", fmt.Errorf("%w: unable to parse sheet id", ErrInvalidSheetURL)
	}
	id := parts[2]

	gid := ""
	if strings.HasPrefix(u.Fragment, "gid=") {
		gid = strings.SplitN(u.Fragment, "=", 2)[1]
	}
	if gid == "" {
		gid = u.Query().Get("gid")
	}
	if gid == "" {
		gid = "0"
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", id, gid), nil
}
