// Package bruteforce tracks failed verification attempts and locks out
// abusive callers and brute-forced resources independently. A resource
// legitimately receives attempts from many distinct callers, so its
// threshold and window are wider than a single caller's.
//
// The two scope records are updated in two separate transactions, not
// one cross-key transaction. A crash between them leaves each scope
// self-consistent; the partial-failure window is accepted rather than
// engineered away.
package bruteforce

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hostling/guestgate/internal/docstore"
)

// Scope is the dimension a lockout record tracks.
type Scope string

const (
	ScopeCaller   Scope = "caller"
	ScopeResource Scope = "resource"
)

// Policy is the failure threshold and timing for one scope.
type Policy struct {
	MaxFailures int           `yaml:"max_failures"`
	Window      time.Duration `yaml:"window"`
	Lockout     time.Duration `yaml:"lockout"`
}

// Config holds both scope policies.
type Config struct {
	Caller   Policy `yaml:"caller"`
	Resource Policy `yaml:"resource"`
}

// DefaultConfig returns the fixed lockout policy.
func DefaultConfig() Config {
	return Config{
		Caller:   Policy{MaxFailures: 5, Window: 15 * time.Minute, Lockout: 30 * time.Minute},
		Resource: Policy{MaxFailures: 20, Window: 60 * time.Minute, Lockout: 60 * time.Minute},
	}
}

// Guard is the dual-scope lockout accountant.
type Guard struct {
	store docstore.Store
	mu    sync.RWMutex
	cfg   Config
	now   func() time.Time
}

// New creates a guard over the persistent store.
func New(store docstore.Store, cfg Config) *Guard {
	return &Guard{store: store, cfg: cfg, now: time.Now}
}

// NewAt creates a guard with an injected clock.
func NewAt(store docstore.Store, cfg Config, now func() time.Time) *Guard {
	return &Guard{store: store, cfg: cfg, now: now}
}

// Reload atomically swaps the lockout policy. Active lockouts keep
// their stored expiry; the new thresholds apply from the next failure.
func (g *Guard) Reload(cfg Config) {
	g.mu.Lock()
	g.cfg = cfg
	g.mu.Unlock()
}

func (g *Guard) config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cfg
}

func key(scope Scope, id string) string {
	return "bruteforce." + string(scope) + ":" + id
}

// RecordFailure increments both scope records. Each update is its own
// transaction; a failure in one does not roll back the other. The
// returned error is for logging only — enforcement is fail-open, so
// callers must not turn it into a denial.
func (g *Guard) RecordFailure(ctx context.Context, callerID, resourceID string) error {
	cfg := g.config()
	return errors.Join(
		g.recordScope(ctx, ScopeCaller, callerID, cfg.Caller),
		g.recordScope(ctx, ScopeResource, resourceID, cfg.Resource),
	)
}

func (g *Guard) recordScope(ctx context.Context, scope Scope, id string, pol Policy) error {
	now := g.now()
	return g.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		doc, ok, err := tx.Get(key(scope, id))
		if err != nil {
			return err
		}

		failures := 0
		windowStart := now
		var lockoutUntil time.Time
		if ok {
			failures = int(docstore.Int64(doc, "failed_attempts"))
			windowStart = time.UnixMilli(docstore.Int64(doc, "window_start"))
			if ms := docstore.Int64(doc, "lockout_until"); ms > 0 {
				lockoutUntil = time.UnixMilli(ms)
			}
		}

		switch {
		case !lockoutUntil.IsZero() && !now.Before(lockoutUntil):
			// Lockout served; this failure starts a fresh window.
			failures = 1
			windowStart = now
			lockoutUntil = time.Time{}
		case now.Sub(windowStart) > pol.Window:
			failures = 1
			windowStart = now
		default:
			failures++
		}

		// Activation only counts failures inside an unexpired window. An
		// already-active lockout is never shortened, only extended.
		if failures >= pol.MaxFailures {
			until := now.Add(pol.Lockout)
			if until.After(lockoutUntil) {
				lockoutUntil = until
			}
		}

		out := docstore.Doc{
			"failed_attempts": failures,
			"window_start":    windowStart.UnixMilli(),
			"last_attempt":    now.UnixMilli(),
			"scope":           string(scope),
		}
		if !lockoutUntil.IsZero() {
			out["lockout_until"] = lockoutUntil.UnixMilli()
		}
		return tx.Set(key(scope, id), out)
	})
}

// IsLocked reports whether either scope is currently locked out. The
// result carries no indication of which scope triggered it: callers
// render the same generic response for a caller lockout, a resource
// lockout, and a genuine miss, so neither dimension can be enumerated.
// On store failure the answer is "not locked" — infrastructure trouble
// must not lock out legitimate guests.
func (g *Guard) IsLocked(ctx context.Context, callerID, resourceID string) bool {
	return g.scopeLocked(ctx, ScopeCaller, callerID) ||
		g.scopeLocked(ctx, ScopeResource, resourceID)
}

func (g *Guard) scopeLocked(ctx context.Context, scope Scope, id string) bool {
	doc, ok, err := g.store.Get(ctx, key(scope, id))
	if err != nil || !ok {
		return false
	}
	ms := docstore.Int64(doc, "lockout_until")
	if ms == 0 {
		return false
	}
	// Sticky until its own expiry, regardless of window math.
	return g.now().Before(time.UnixMilli(ms))
}
