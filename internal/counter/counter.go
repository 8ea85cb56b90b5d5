// Package counter implements fixed-window event counters, the shared
// primitive under the rate limiter. Three backends exist: a volatile
// in-process map for shedding trivial load, the document store for the
// authoritative tier, and Redis for deployments that want a shared fast
// tier. All three honor the same contract.
package counter

import (
	"context"
	"time"
)

// Record is the state of one fixed-window counter.
type Record struct {
	Count       int
	WindowStart time.Time
}

// Store increments fixed-window counters. When limit > 0 and the
// counter has already reached limit within the active window, the count
// is left unchanged and admitted is false. A window older than the
// given duration resets as if this were the first event.
type Store interface {
	Increment(ctx context.Context, purpose, identifier string, window time.Duration, limit int) (rec Record, admitted bool, err error)
}

// Key builds the namespaced storage key for a counter.
func Key(purpose, identifier string) string {
	return purpose + ":" + identifier
}
