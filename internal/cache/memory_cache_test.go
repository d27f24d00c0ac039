package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestInMemoryCache_SetAndGet(t *testing.T) {
	cache := NewInMemoryCache(0)
	ctx := context.Background()
	key := "Write a Go function `process(df)`"
	value := "completion"

	if err := cache.Set(ctx, key, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != value {
		t.Errorf("expected %v, got %v", value, got)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}

func TestInMemoryCache_Miss(t *testing.T) {
	cache := NewInMemoryCache(0)
	_, err := cache.Get(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestInMemoryCache_ExactKey(t *testing.T) {
	cache := NewInMemoryCache(0)
	ctx := context.Background()
	_ = cache.Set(ctx, "prompt", 1)

	if _, err := cache.Get(ctx, "prompt "); err == nil {
		t.Errorf("expected a miss for a key differing by whitespace")
	}
}

func TestInMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	cache := NewInMemoryCache(0)
	ctx := context.Background()
	_ = cache.Set(ctx, "k", "v")

	time.Sleep(20 * time.Millisecond)
	if _, err := cache.Get(ctx, "k"); err != nil {
		t.Errorf("expected entry to survive, got %v", err)
	}
}

func TestInMemoryCache_Expiration(t *testing.T) {
	cache := NewInMemoryCache(50 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	if err := cache.Set(ctx, "baz", "qux"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := cache.Get(ctx, "baz"); err == nil {
		t.Errorf("expected error for expired item, got nil")
	}
}

func TestInMemoryCache_ContextDone(t *testing.T) {
	cache := NewInMemoryCache(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Set(ctx, "k", "v"); err == nil {
		t.Errorf("expected Set to fail on a cancelled context")
	}
	if _, err := cache.Get(ctx, "k"); err == nil {
		t.Errorf("expected Get to fail on a cancelled context")
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	cache := NewInMemoryCache(0)
	_ = cache.Set(context.Background(), "k", "v")
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Len())
	}
	cache.Close()
	cache.Close()
}

func TestInMemoryCache_Concurrency(t *testing.T) {
	cache := NewInMemoryCache(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := cache.Set(ctx, "concurrent", "val"); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := cache.Get(ctx, "concurrent"); err != nil && !strings.Contains(err.Error(), "not found") {
				t.Errorf("unexpected Get error: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}
