// Package docstore defines the persistent document store the pipeline's
// authoritative state lives in. Keys are namespaced strings such as
// "ratelimit.chat:203.0.113.7". The interface is deliberately narrow:
// correctness-critical counters and lockouts only need get, set, and an
// atomic read-modify-write transaction scoped to single keys.
package docstore

import "context"

// Doc is a generic JSON-like document.
type Doc map[string]any

// Tx provides transactional access to documents inside RunTransaction.
// All reads and writes through a Tx commit or fail together.
type Tx interface {
	Get(key string) (Doc, bool, error)
	Set(key string, doc Doc) error
}

// Store is a persistent document store with atomic read-modify-write.
type Store interface {
	Get(ctx context.Context, key string) (Doc, bool, error)
	Set(ctx context.Context, key string, doc Doc, merge bool) error
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Int64 reads an integer field from a document. JSON round-trips turn
// integers into float64, so both representations are accepted.
func Int64(doc Doc, field string) int64 {
	switch n := doc[field].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
