package httpapi

import "jobintake-engine/internal/domain"

// rowsRequest is the JSON body of POST /job_intake/rows.
type rowsRequest struct {
	Rows          []domain.RawRow `json:"rows"`
	DryRun        bool            `json:"dry_run"`
	ImportBatchID string          `json:"import_batch_id"`
}

type setPasswordReq struct {
	Password string `json:"password"`
}
