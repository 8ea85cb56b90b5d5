// Package ratelimit enforces per-endpoint request budgets with fixed
// windows. Fixed-window counting accepts up to 2x the budget across a
// window boundary in exchange for O(1) state per key; that trade-off is
// deliberate. The limiter is availability-oriented: on counter store
// failure it fails open.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hostling/guestgate/internal/counter"
)

// purposePrefix namespaces limiter counters away from other users of
// the counter store.
const purposePrefix = "ratelimit."

// unknownRemaining is reported for endpoints with no configured limit.
// Unknown endpoints fail open rather than crash.
const unknownRemaining = 1 << 20

// EndpointLimit is the fixed-window budget for one endpoint.
type EndpointLimit struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// Table maps endpoint names to their budgets. The table is policy
// loaded from config; there is no dynamic registration, but the whole
// table can be swapped on reload.
type Table map[string]EndpointLimit

// Result is the outcome of an Allow check.
type Result struct {
	Allowed   bool
	Remaining int
}

// Limiter checks requests against the endpoint table using a counter
// store backend.
type Limiter struct {
	mu       sync.RWMutex
	table    Table
	counters counter.Store
}

// New creates a limiter over the given table and counter store.
func New(table Table, counters counter.Store) *Limiter {
	return &Limiter{table: table, counters: counters}
}

// Reload atomically swaps the endpoint table. In-window counters are
// kept: a budget change applies to the very next request.
func (l *Limiter) Reload(table Table) {
	l.mu.Lock()
	l.table = table
	l.mu.Unlock()
}

// Allow records one request for (endpoint, identifier) and reports
// whether it is within budget. The first request in a window is always
// admitted; later requests are admitted while the count stays under
// MaxRequests. On counter store failure the request is admitted: this
// check is not a security boundary and availability outranks strict
// enforcement here.
func (l *Limiter) Allow(ctx context.Context, endpoint, identifier string) Result {
	l.mu.RLock()
	lim, ok := l.table[endpoint]
	l.mu.RUnlock()
	if !ok || lim.MaxRequests <= 0 || lim.Window <= 0 {
		return Result{Allowed: true, Remaining: unknownRemaining}
	}

	rec, admitted, err := l.counters.Increment(ctx, purposePrefix+endpoint, identifier, lim.Window, lim.MaxRequests)
	if err != nil {
		// Fail open.
		return Result{Allowed: true, Remaining: lim.MaxRequests - 1}
	}
	if !admitted {
		return Result{Allowed: false, Remaining: 0}
	}
	return Result{Allowed: true, Remaining: lim.MaxRequests - rec.Count}
}
