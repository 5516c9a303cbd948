package events

import (
	"encoding/json"
	"time"
)

const (
	TypeImportCompleted = "import_completed"
	TypePostingDeleted  = "posting_deleted"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ImportCompleted is the payload of an import_completed event.
type ImportCompleted struct {
	Source      string `json:"source"`
	BatchID     string `json:"batch_id"`
	DryRun      bool   `json:"dry_run"`
	Accepted    int    `json:"accepted"`
	Quarantined int    `json:"quarantined"`
}

type PostingDeleted struct {
	ID string `json:"id"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
