package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"jobintake-engine/internal/domain"
)

var ErrMalformedCSV = errors.New("malformed csv")

// ParseCSV reads a header-keyed CSV document. Unknown columns are ignored and
// cells missing from short records are left absent. Invalid UTF-8 is replaced
// rather than rejected.
func ParseCSV(data []byte) ([]domain.RawRow, error) {
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []domain.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	rows := make([]domain.RawRow, 0, len(records))
	for _, rec := range records {
		m := make(map[string]string, len(header))
		for j, name := range header {
			if name == "" || j >= len(rec) {
				continue
			}
			m[name] = rec[j]
		}
		rows = append(rows, domain.RawRowFromMap(m))
	}
	return rows, nil
}
