// Package importer runs intake batches through normalize, validate, store and
// merge, and adapts the CSV, Google Sheet and JSON sources onto that pipeline.
package importer

import (
	"context"
	"fmt"
	"time"

	"jobintake-engine/internal/domain"
	"jobintake-engine/internal/metrics"
	"jobintake-engine/internal/normalize"
	"jobintake-engine/internal/postings"
	"jobintake-engine/internal/store"
	"jobintake-engine/internal/validate"
)

type RowWarnings struct {
	RowIndex int      `json:"row_index"`
	Warnings []string `json:"warnings"`
}

type RowErrors struct {
	RowIndex int      `json:"row_index"`
	Errors   []string `json:"errors"`
}

// Result is the per-batch report.
type Result struct {
	Accepted      int           `json:"accepted"`
	Quarantined   int           `json:"quarantined"`
	WarningsByRow []RowWarnings `json:"warnings_by_row"`
	ErrorsByRow   []RowErrors   `json:"errors_by_row"`
	BatchID       string        `json:"batch_id"`
}

type Pipeline struct {
	db    *store.DB
	now   func() time.Time
	newID func() string
}

type PipelineOption func(*Pipeline)

// WithClock overrides the source of "now" used for rows without captured_at.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithIDs overrides capture and batch id generation.
func WithIDs(newID func() string) PipelineOption {
	return func(p *Pipeline) { p.newID = newID }
}

func NewPipeline(db *store.DB, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{db: db, now: time.Now, newID: domain.NewID}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ImportBatch processes rows in order. Rows with hard errors are quarantined
// and skipped; the rest become captures merged into postings. A non-dry-run
// batch commits as one transaction: any storage error rolls back every row
// and is returned together with the report built so far.
func (p *Pipeline) ImportBatch(ctx context.Context, rows []domain.RawRow, dryRun bool, batchID string) (Result, error) {
	if batchID == "" {
		batchID = p.newID()
	}
	res := Result{
		BatchID:       batchID,
		WarningsByRow: []RowWarnings{},
		ErrorsByRow:   []RowErrors{},
	}

	process := func(tx *store.Tx) error {
		for i, raw := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			row, check := p.prepare(raw, batchID)
			if len(check.SoftWarnings) > 0 {
				res.WarningsByRow = append(res.WarningsByRow, RowWarnings{RowIndex: i, Warnings: check.SoftWarnings})
			}
			if !check.OK() {
				res.ErrorsByRow = append(res.ErrorsByRow, RowErrors{RowIndex: i, Errors: check.HardErrors})
				res.Quarantined++
				continue
			}
			if tx == nil {
				res.Accepted++
				continue
			}

			c := domain.CaptureFromRow(p.newID(), row, check.HardErrors, check.SoftWarnings)
			if err := tx.InsertCapture(ctx, c); err != nil {
				return fmt.Errorf("row %d: insert capture: %w", i, err)
			}
			if _, _, err := postings.MergeCapture(ctx, tx, c.ID, row); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			res.Accepted++
		}
		return nil
	}

	var err error
	if dryRun {
		err = process(nil)
	} else {
		err = p.db.WithTx(ctx, process)
	}
	if err != nil {
		return res, fmt.Errorf("import batch %s: %w", batchID, err)
	}

	metrics.RowsTotal.WithLabelValues("accepted").Add(float64(res.Accepted))
	metrics.RowsTotal.WithLabelValues("quarantined").Add(float64(res.Quarantined))
	metrics.RowsTotal.WithLabelValues("warned").Add(float64(len(res.WarningsByRow)))
	return res, nil
}

func (p *Pipeline) prepare(raw domain.RawRow, batchID string) (domain.Row, validate.Result) {
	row := normalize.Row(raw)
	if at, ok := normalize.ParseCapturedAt(raw.CapturedAt, p.now()); ok {
		row.CapturedAt = at
	}
	row.ImportBatchID = batchID
	return row, validate.Row(row)
}
