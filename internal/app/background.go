package app

import (
	"context"
	"log"
	"sync"
	"time"

	"jobintake-engine/internal/events"
	"jobintake-engine/internal/importer"
	"jobintake-engine/internal/scheduler"
)

// Background starts the ATS resolver and the sheet watch, as configured, and
// returns a wait func that blocks until both have stopped after ctx is done.
func (a *App) Background(ctx context.Context, hub *events.Hub) (wait func()) {
	var wg sync.WaitGroup

	if every := time.Duration(a.Cfg.Ats.IntervalSeconds) * time.Second; every > 0 {
		batch := a.Cfg.Ats.BatchSize
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Every(ctx, every, "ats", func(ctx context.Context) error {
				_, err := a.Ats.RunOnce(ctx, batch)
				return err
			})
		}()
	}

	if every := time.Duration(a.Cfg.Import.WatchIntervalMinutes) * time.Minute; every > 0 && len(a.Cfg.Import.WatchSheets) > 0 {
		sheets := append([]string(nil), a.Cfg.Import.WatchSheets...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Every(ctx, every, "sheet-watch", func(ctx context.Context) error {
				return a.refreshSheets(ctx, hub, sheets)
			})
		}()
	}

	return wg.Wait
}

// refreshSheets re-imports each watched sheet. One failing sheet does not stop
// the rest; the first error is returned.
func (a *App) refreshSheets(ctx context.Context, hub *events.Hub, urls []string) error {
	var first error
	for _, u := range urls {
		res, err := a.Importer.ImportSheet(ctx, u, importer.Options{})
		if err != nil {
			log.Printf("[sheet-watch] url=%s err=%v", u, err)
			if first == nil {
				first = err
			}
			continue
		}
		hub.Emit("", events.TypeImportCompleted, events.ImportCompleted{
			Source:      "google_sheet",
			BatchID:     res.BatchID,
			Accepted:    res.Accepted,
			Quarantined: res.Quarantined,
		})
	}
	return first
}
