package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryOverviewCacheExpiry(t *testing.T) {
	c := newMemoryOverviewCache(20 * time.Millisecond)
	ctx := context.Background()

	if _, ok := c.Get(ctx); ok {
		t.Error("empty cache should miss")
	}

	c.Set(ctx, []byte(`{"total":1}`))
	payload, ok := c.Get(ctx)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(payload) != `{"total":1}` {
		t.Errorf("payload = %q", payload)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx); ok {
		t.Error("expected miss after TTL")
	}
}

func TestNewOverviewCacheFallsBackWithoutAddr(t *testing.T) {
	c, err := NewOverviewCache("", "", 0, time.Second)
	if err != nil {
		t.Fatalf("NewOverviewCache() error = %v", err)
	}
	if _, ok := c.(*memoryOverviewCache); !ok {
		t.Errorf("cache type = %T, want *memoryOverviewCache", c)
	}
}
