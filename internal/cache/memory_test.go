package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	_, err := c.Get(context.Background(), "missing")
	if err != ErrCacheMiss {
		t.Errorf("Get err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("Get err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_DeleteMany(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte("v"), 0); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}

	if err := c.DeleteMany(ctx, "a", "b", "does-not-exist"); err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}

	if _, err := c.Get(ctx, "a"); err != ErrCacheMiss {
		t.Errorf("a should be gone, got %v", err)
	}
	if _, err := c.Get(ctx, "c"); err != nil {
		t.Errorf("c should survive, got %v", err)
	}
}

func TestMemoryCache_MutationIsolation(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	original := []byte("immutable")
	if err := c.Set(ctx, "key", original, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Mutating the slice we stored must not affect the cached copy
	original[0] = 'X'

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "immutable" {
		t.Errorf("Get = %q, want %q", got, "immutable")
	}

	// Mutating what Get returned must not affect later reads
	got[0] = 'Y'
	again, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(again) != "immutable" {
		t.Errorf("Get = %q, want %q", again, "immutable")
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	c.Close()

	ctx := context.Background()
	if _, err := c.Get(ctx, "key"); err != ErrCacheClosed {
		t.Errorf("Get err = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "key", []byte("v"), 0); err != ErrCacheClosed {
		t.Errorf("Set err = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	_ = c.Set(ctx, "key", []byte("value"), 0)
	_, _ = c.Get(ctx, "key")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %f, want 50", stats.HitRate)
	}
}
