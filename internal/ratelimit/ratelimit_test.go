package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hostling/guestgate/internal/counter"
	"github.com/hostling/guestgate/internal/docstore"
)

func testTable() Table {
	return Table{
		"chat": {MaxRequests: 20, Window: time.Minute},
	}
}

func TestAllowBudget(t *testing.T) {
	l := New(testTable(), counter.NewMemory())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		res := l.Allow(ctx, "chat", "guest-1")
		if !res.Allowed {
			t.Fatalf("call %d denied within budget", i+1)
		}
		want := 19 - i
		if res.Remaining != want {
			t.Errorf("call %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res := l.Allow(ctx, "chat", "guest-1")
	if res.Allowed || res.Remaining != 0 {
		t.Errorf("21st call: got allowed=%v remaining=%d, want denial", res.Allowed, res.Remaining)
	}

	// Another identifier has its own budget.
	if res := l.Allow(ctx, "chat", "guest-2"); !res.Allowed || res.Remaining != 19 {
		t.Errorf("other identifier: got allowed=%v remaining=%d", res.Allowed, res.Remaining)
	}
}

func TestReloadChangesAdmission(t *testing.T) {
	l := New(Table{"chat": {MaxRequests: 1, Window: time.Minute}}, counter.NewMemory())
	ctx := context.Background()

	if res := l.Allow(ctx, "chat", "guest-1"); !res.Allowed {
		t.Fatal("first call denied within budget")
	}
	if res := l.Allow(ctx, "chat", "guest-1"); res.Allowed {
		t.Fatal("second call admitted over budget")
	}

	l.Reload(Table{"chat": {MaxRequests: 100, Window: time.Minute}})

	// The raised budget applies immediately, counters intact.
	res := l.Allow(ctx, "chat", "guest-1")
	if !res.Allowed {
		t.Error("call denied after budget was raised")
	}
	if res.Remaining != 98 {
		t.Errorf("remaining = %d, want 98", res.Remaining)
	}
}

func TestAllowUnknownEndpoint(t *testing.T) {
	l := New(testTable(), counter.NewMemory())
	res := l.Allow(context.Background(), "nope", "guest-1")
	if !res.Allowed {
		t.Error("unknown endpoint should not be limited")
	}
}

func TestAllowZeroBudget(t *testing.T) {
	l := New(Table{"chat": {MaxRequests: 0, Window: time.Minute}}, counter.NewMemory())
	if res := l.Allow(context.Background(), "chat", "g"); !res.Allowed {
		t.Error("unconfigured budget should admit")
	}
}

func TestAllowWindowReset(t *testing.T) {
	clk := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clk }
	l := New(Table{"chat": {MaxRequests: 2, Window: time.Minute}}, counter.NewMemoryAt(now))
	ctx := context.Background()

	l.Allow(ctx, "chat", "g")
	l.Allow(ctx, "chat", "g")
	if res := l.Allow(ctx, "chat", "g"); res.Allowed {
		t.Fatal("expected denial at budget")
	}

	clk = clk.Add(61 * time.Second)
	if res := l.Allow(ctx, "chat", "g"); !res.Allowed || res.Remaining != 1 {
		t.Errorf("after window: got allowed=%v remaining=%d", res.Allowed, res.Remaining)
	}
}

func TestAllowFailsOpen(t *testing.T) {
	store := docstore.NewMemory()
	l := New(testTable(), counter.NewPersistent(store))

	store.FailNext = errors.New("store down")
	res := l.Allow(context.Background(), "chat", "guest-1")
	if !res.Allowed {
		t.Error("store failure should admit the request")
	}
}
