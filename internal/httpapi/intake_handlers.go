package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"jobintake-engine/internal/events"
	"jobintake-engine/internal/importer"
)

const maxUploadBytes = 32 << 20

type IntakeHandler struct {
	Importer *importer.Service
	Hub      *events.Hub
}

func (h IntakeHandler) options(w http.ResponseWriter, r *http.Request) (importer.Options, bool) {
	dry, err := queryBool(r, "dry_run")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_query", "dry_run must be a boolean")
		return importer.Options{}, false
	}
	return importer.Options{
		DryRun:  dry,
		BatchID: strings.TrimSpace(r.URL.Query().Get("import_batch_id")),
	}, true
}

// ImportCSV accepts a multipart upload in field "file" or a raw CSV body.
func (h IntakeHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}

	data, err := readCSVUpload(w, r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}

	res, err := h.Importer.ImportCSV(r.Context(), data, opts)
	h.finish(w, r, "csv", opts, res, err)
}

func (h IntakeHandler) ImportSheet(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}
	sheetURL := strings.TrimSpace(r.URL.Query().Get("sheet_url"))
	if sheetURL == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_sheet_url", "sheet_url is required")
		return
	}

	res, err := h.Importer.ImportSheet(r.Context(), sheetURL, opts)
	h.finish(w, r, "google_sheet", opts, res, err)
}

func (h IntakeHandler) ImportRows(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}

	var req rowsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err := dec.Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if req.DryRun {
		opts.DryRun = true
	}
	if id := strings.TrimSpace(req.ImportBatchID); id != "" {
		opts.BatchID = id
	}

	res, err := h.Importer.ImportRows(r.Context(), req.Rows, opts)
	h.finish(w, r, "rows", opts, res, err)
}

func (h IntakeHandler) finish(w http.ResponseWriter, r *http.Request, source string, opts importer.Options, res importer.Result, err error) {
	if err != nil {
		if isInputError(err) {
			writeServiceError(w, r, err)
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeImportCompleted, events.ImportCompleted{
		Source:      source,
		BatchID:     res.BatchID,
		DryRun:      opts.DryRun,
		Accepted:    res.Accepted,
		Quarantined: res.Quarantined,
	})
	WriteJSON(w, http.StatusOK, res)
}

func readCSVUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errors.New(`multipart field "file" is required`)
		}
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
