package scrape

import (
	"context"
	"time"
)

// waitFor polls cond until it returns true, the timeout elapses, or ctx is
// done. It reports whether cond became true. Readiness is always expressed
// this way rather than as a fixed sleep, so tests can shrink the timings
// to nothing.
func waitFor(ctx context.Context, timeout, interval time.Duration, cond func() bool) bool {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}
