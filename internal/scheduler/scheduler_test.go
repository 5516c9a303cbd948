package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEveryRunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	done := make(chan struct{})

	go func() {
		defer close(done)
		Every(ctx, 10*time.Millisecond, "test", func(context.Context) error {
			if n.Add(1) == 3 {
				cancel()
			}
			return errors.New("keeps going")
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Every did not return after cancel")
	}
	if got := n.Load(); got < 3 {
		t.Fatalf("runs = %d", got)
	}
}

func TestEveryDisabled(t *testing.T) {
	called := false
	Every(context.Background(), 0, "off", func(context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Fatal("task ran with zero interval")
	}
}
