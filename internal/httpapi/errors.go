package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobintake-engine/internal/importer"
	"jobintake-engine/internal/postings"
	"jobintake-engine/internal/sheets"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeServiceError maps service sentinels onto status codes and stable codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, postings.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "posting not found")
	case errors.Is(err, postings.ErrInvalidLimit):
		WriteError(w, r, http.StatusBadRequest, "invalid_limit", err.Error())
	case errors.Is(err, postings.ErrInvalidStatus):
		WriteError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, sheets.ErrInvalidSheetURL):
		WriteError(w, r, http.StatusBadRequest, "invalid_sheet_url", err.Error())
	case errors.Is(err, sheets.ErrFetchFailed):
		WriteError(w, r, http.StatusBadRequest, "sheet_fetch_failed", err.Error())
	case errors.Is(err, importer.ErrMalformedCSV):
		WriteError(w, r, http.StatusBadRequest, "malformed_csv", err.Error())
	case errors.Is(err, importer.ErrTooManyRows):
		WriteError(w, r, http.StatusRequestEntityTooLarge, "too_many_rows", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// isInputError reports failures caused by the request rather than the store.
func isInputError(err error) bool {
	return errors.Is(err, sheets.ErrInvalidSheetURL) ||
		errors.Is(err, sheets.ErrFetchFailed) ||
		errors.Is(err, importer.ErrMalformedCSV) ||
		errors.Is(err, importer.ErrTooManyRows)
}
