package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"jobintake-engine/internal/archive"
	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/metrics"
	"jobintake-engine/internal/sheets"
)

var ErrTooManyRows = errors.New("too many rows in batch")

type Options struct {
	DryRun  bool
	BatchID string
}

// SheetFetcher downloads a CSV export link.
type SheetFetcher interface {
	Fetch(ctx context.Context, exportURL string) ([]byte, error)
}

// Service feeds the intake sources into one Pipeline.
type Service struct {
	pipeline *Pipeline
	sheets   SheetFetcher
	archive  archive.Archiver
	maxRows  int
}

// NewService wires the sources. sheets and arch may be nil; maxRows <= 0
// disables the batch size check.
func NewService(p *Pipeline, fetcher SheetFetcher, arch archive.Archiver, maxRows int) *Service {
	if arch == nil {
		arch = archive.Nop{}
	}
	return &Service{pipeline: p, sheets: fetcher, archive: arch, maxRows: maxRows}
}

func (s *Service) ImportCSV(ctx context.Context, data []byte, opts Options) (Result, error) {
	return s.importCSV(ctx, "csv", data, opts)
}

// ImportSheet translates a Google Sheets link to its CSV export, downloads it
// and imports it as CSV. Nothing is written when the link or the fetch fails.
func (s *Service) ImportSheet(ctx context.Context, sheetURL string, opts Options) (Result, error) {
	exportURL, err := sheets.CSVExportURL(sheetURL)
	if err != nil {
		return Result{}, err
	}
	if s.sheets == nil {
		return Result{}, fmt.Errorf("%w: sheet import is not configured", sheets.ErrFetchFailed)
	}
	data, err := s.sheets.Fetch(ctx, exportURL)
	if err != nil {
		return Result{}, err
	}
	return s.importCSV(ctx, "google_sheet", data, opts)
}

// ImportRows imports rows posted as JSON, e.g. by the browser extension.
func (s *Service) ImportRows(ctx context.Context, rows []domain.RawRow, opts Options) (Result, error) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, "rows", rows, payload, "application/json", "json", opts)
}

func (s *Service) importCSV(ctx context.Context, source string, data []byte, opts Options) (Result, error) {
	rows, err := ParseCSV(data)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, source, rows, data, "text/csv", "csv", opts)
}

func (s *Service) run(ctx context.Context, source string, rows []domain.RawRow, payload []byte, contentType, ext string, opts Options) (Result, error) {
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return Result{}, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), s.maxRows)
	}

	start := time.Now()
	res, err := s.pipeline.ImportBatch(ctx, rows, opts.DryRun, opts.BatchID)
	metrics.BatchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BatchesTotal.WithLabelValues(source, "failed").Inc()
		log.Printf("[import] source=%s batch=%s rows=%d err=%v", source, res.BatchID, len(rows), err)
		return res, err
	}

	outcome := "committed"
	if opts.DryRun {
		outcome = "dry_run"
	}
	metrics.BatchesTotal.WithLabelValues(source, outcome).Inc()
	log.Printf("[import] source=%s batch=%s %s rows=%d accepted=%d quarantined=%d warned=%d took=%s",
		source, res.BatchID, outcome, len(rows), res.Accepted, res.Quarantined, len(res.WarningsByRow), time.Since(start))

	if !opts.DryRun {
		key := archive.BatchKey(res.BatchID, source, ext, start)
		if err := s.archive.Put(ctx, key, contentType, payload); err != nil {
			log.Printf("[import] archive batch=%s key=%s err=%v", res.BatchID, key, err)
		}
	}
	return res, nil
}
