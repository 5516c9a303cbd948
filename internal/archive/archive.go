// Package archive keeps a copy of every committed raw import payload.
package archive

import (
	"context"
	"fmt"
	"path"
	"time"
)

// Archiver stores one payload under key.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// BatchKey names the object for one import batch, partitioned by day.
func BatchKey(batchID, source, ext string, at time.Time) string {
	return path.Join("batches", at.UTC().Format("2006-01-02"), fmt.Sprintf("%s-%s.%s", batchID, source, ext))
}

// Nop discards payloads.
type Nop struct{}

func (Nop) Put(context.Context, string, string, []byte) error { return nil }
