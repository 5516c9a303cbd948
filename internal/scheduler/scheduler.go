// Package scheduler runs background tasks on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on each tick until ctx is done.
// A run that outlasts the interval delays the next one; runs never overlap.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run(ctx, name, task)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run(ctx, name, task)
		}
	}
}

func run(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := task(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[%s] error: %v", name, err)
		return
	}
	if d := time.Since(start); d > time.Second {
		log.Printf("[%s] took %s", name, d.Round(time.Millisecond))
	}
}
