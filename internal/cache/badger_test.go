package cache

import (
	"context"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := NewBadgerCache("")
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBadgerCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Set(ctx, SessionKey("s1"), []byte(`{"a":1}`), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := c.Get(ctx, SessionKey("s1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(value) != `{"a":1}` {
		t.Fatalf("unexpected value (%q, %v)", value, ok)
	}

	if _, ok, _ := c.Get(ctx, SessionKey("missing")); ok {
		t.Fatal("absent key must be a miss, not an error")
	}

	if err := c.Delete(ctx, SessionKey("s1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, SessionKey("s1")); ok {
		t.Fatal("deleted key must be a miss")
	}

	// Deleting an absent key is not an error.
	if err := c.Delete(ctx, SessionKey("s1")); err != nil {
		t.Fatalf("double delete failed: %v", err)
	}
}

func TestBadgerCacheTTL(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Set(ctx, "k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expired key must be a miss, got (ok=%v, err=%v)", ok, err)
	}
}
