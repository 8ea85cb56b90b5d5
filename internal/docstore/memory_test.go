package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected missing doc")
	}
}

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", Doc{"count": int64(3)}, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	doc, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if Int64(doc, "count") != 3 {
		t.Errorf("expected count 3, got %d", Int64(doc, "count"))
	}
}

func TestMemorySetMerge(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", Doc{"a": "1", "b": "2"}, false)
	m.Set(ctx, "k", Doc{"b": "3"}, true)

	doc, _, _ := m.Get(ctx, "k")
	if doc["a"] != "1" || doc["b"] != "3" {
		t.Errorf("merge produced %v", doc)
	}
}

func TestMemoryTransactionCommit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		doc, ok, err := tx.Get("counter")
		if err != nil {
			return err
		}
		n := int64(0)
		if ok {
			n = Int64(doc, "n")
		}
		return tx.Set("counter", Doc{"n": n + 1})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	doc, _, _ := m.Get(ctx, "counter")
	if Int64(doc, "n") != 1 {
		t.Errorf("expected 1, got %d", Int64(doc, "n"))
	}
}

func TestMemoryTransactionRollbackOnError(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	boom := errors.New("boom")
	err := m.RunTransaction(ctx, func(tx Tx) error {
		tx.Set("k", Doc{"v": "written"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("write survived failed transaction")
	}
}

func TestMemoryTransactionReadsOwnWrites(t *testing.T) {
	m := NewMemory()

	err := m.RunTransaction(context.Background(), func(tx Tx) error {
		tx.Set("k", Doc{"v": "x"})
		doc, ok, err := tx.Get("k")
		if err != nil || !ok {
			t.Fatalf("read own write: ok=%v err=%v", ok, err)
		}
		if doc["v"] != "x" {
			t.Errorf("expected x, got %v", doc["v"])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestMemoryFailNext(t *testing.T) {
	m := NewMemory()
	m.FailNext = errors.New("store down")

	if err := m.RunTransaction(context.Background(), func(tx Tx) error { return nil }); err == nil {
		t.Fatal("expected injected failure")
	}
	// Next call succeeds.
	if err := m.RunTransaction(context.Background(), func(tx Tx) error { return nil }); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}
