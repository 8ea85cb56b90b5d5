package counter

import (
	"context"
	"time"

	"github.com/hostling/guestgate/internal/docstore"
)

// Persistent is the authoritative counter store. Each increment is one
// read-check-write transaction against a single document key, so any
// number of stateless instances sharing the store count correctly.
type Persistent struct {
	store docstore.Store
	now   func() time.Time
}

// NewPersistent creates a counter store over the given document store.
func NewPersistent(store docstore.Store) *Persistent {
	return &Persistent{store: store, now: time.Now}
}

// NewPersistentAt creates a persistent store with an injected clock.
func NewPersistentAt(store docstore.Store, now func() time.Time) *Persistent {
	return &Persistent{store: store, now: now}
}

func (p *Persistent) Increment(ctx context.Context, purpose, identifier string, window time.Duration, limit int) (Record, bool, error) {
	key := Key(purpose, identifier)
	now := p.now()

	var rec Record
	var admitted bool
	err := p.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		doc, ok, err := tx.Get(key)
		if err != nil {
			return err
		}

		count := 0
		windowStart := now
		if ok {
			count = int(docstore.Int64(doc, "count"))
			windowStart = time.UnixMilli(docstore.Int64(doc, "window_start"))
			if now.Sub(windowStart) > window {
				count = 0
				windowStart = now
			}
		}

		if limit > 0 && count >= limit {
			rec = Record{Count: count, WindowStart: windowStart}
			admitted = false
			return nil
		}

		count++
		rec = Record{Count: count, WindowStart: windowStart}
		admitted = true
		return tx.Set(key, docstore.Doc{
			"count":        count,
			"window_start": windowStart.UnixMilli(),
		})
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, admitted, nil
}
