package counter

import (
	"context"
	"sync"
	"time"
)

// gcInterval bounds how often the sweep of stale records runs.
const gcInterval = time.Minute

// Memory is the volatile counter store. It is process-scoped,
// best-effort, and explicitly non-authoritative: under a multi-instance
// deployment each instance counts independently. It exists to shed
// trivial load before the persistent tier is touched and must never be
// the sole enforcement for a security-critical check.
type Memory struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
	lastGC  time.Time
	now     func() time.Time
}

type memoryRecord struct {
	count       int
	windowStart time.Time
	lastEvent   time.Time
	window      time.Duration
}

// NewMemory creates an empty volatile counter store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*memoryRecord), now: time.Now}
}

// NewMemoryAt creates a volatile store with an injected clock.
func NewMemoryAt(now func() time.Time) *Memory {
	return &Memory{records: make(map[string]*memoryRecord), now: now}
}

// Increment never fails: there is no backing infrastructure to fail.
func (m *Memory) Increment(ctx context.Context, purpose, identifier string, window time.Duration, limit int) (Record, bool, error) {
	key := Key(purpose, identifier)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.maybeGC(now)

	rec, ok := m.records[key]
	if !ok || now.Sub(rec.windowStart) > window {
		rec = &memoryRecord{count: 1, windowStart: now, lastEvent: now, window: window}
		m.records[key] = rec
		return Record{Count: 1, WindowStart: now}, true, nil
	}

	rec.window = window
	rec.lastEvent = now
	if limit > 0 && rec.count >= limit {
		return Record{Count: rec.count, WindowStart: rec.windowStart}, false, nil
	}
	rec.count++
	return Record{Count: rec.count, WindowStart: rec.windowStart}, true, nil
}

// maybeGC drops records idle for more than twice their own window so
// the map does not grow without bound under churning identifiers.
// Idleness is measured from the last event, not the window start: a key
// active late in its window is not stale yet.
func (m *Memory) maybeGC(now time.Time) {
	if now.Sub(m.lastGC) < gcInterval {
		return
	}
	m.lastGC = now
	for key, rec := range m.records {
		if now.Sub(rec.lastEvent) > 2*rec.window {
			delete(m.records, key)
		}
	}
}

// Len reports how many live counters the store holds.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
