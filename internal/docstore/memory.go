package docstore

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Store used by tests and single-instance
// deployments. Transactions are serialized under one mutex, which gives
// the same atomicity guarantee the persistent backends provide.
type Memory struct {
	mu   sync.Mutex
	docs map[string]Doc

	// FailNext forces the next operation to return this error. Tests use
	// it to assert fail-open and fail-closed directions.
	FailNext error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Doc)}
}

func (m *Memory) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *Memory) Get(ctx context.Context, key string) (Doc, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, false, err
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(doc), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, doc Doc, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.set(key, doc, merge)
	return nil
}

func (m *Memory) set(key string, doc Doc, merge bool) {
	if merge {
		if existing, ok := m.docs[key]; ok {
			merged := maps.Clone(existing)
			maps.Copy(merged, doc)
			m.docs[key] = merged
			return
		}
	}
	m.docs[key] = maps.Clone(doc)
}

func (m *Memory) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	tx := &memoryTx{store: m, writes: make(map[string]Doc)}
	if err := fn(tx); err != nil {
		return err
	}
	for key, doc := range tx.writes {
		m.set(key, doc, false)
	}
	return nil
}

// memoryTx buffers writes until the transaction function returns
// without error.
type memoryTx struct {
	store  *Memory
	writes map[string]Doc
}

func (t *memoryTx) Get(key string) (Doc, bool, error) {
	if doc, ok := t.writes[key]; ok {
		return maps.Clone(doc), true, nil
	}
	doc, ok := t.store.docs[key]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(doc), true, nil
}

func (t *memoryTx) Set(key string, doc Doc) error {
	t.writes[key] = maps.Clone(doc)
	return nil
}
