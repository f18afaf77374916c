package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("MMS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: MMS_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Basic(t *testing.T) {
	url := skipIfNoRedis(t)

	cache, err := NewRedisCacheFromURL(url, "test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_ = cache.Clear(ctx)

	key := "test-key"
	value := []byte("test-value")

	if err := cache.Set(ctx, key, value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}

	exists, err := cache.Has(ctx, key)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !exists {
		t.Error("Has should report the key exists")
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get after delete err = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeleteMany(t *testing.T) {
	url := skipIfNoRedis(t)

	cache, err := NewRedisCacheFromURL(url, "test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_ = cache.Clear(ctx)

	for _, key := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}

	if err := cache.DeleteMany(ctx, "a", "b"); err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}

	if _, err := cache.Get(ctx, "a"); err != ErrCacheMiss {
		t.Errorf("a should be gone, got %v", err)
	}
	if _, err := cache.Get(ctx, "c"); err != nil {
		t.Errorf("c should survive, got %v", err)
	}
}

func TestRedisCache_MissTracking(t *testing.T) {
	url := skipIfNoRedis(t)

	cache, err := NewRedisCacheFromURL(url, "test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	cache.ResetStats()
	ctx := context.Background()

	if _, err := cache.Get(ctx, "nope"); err != ErrCacheMiss {
		t.Fatalf("Get err = %v, want ErrCacheMiss", err)
	}

	stats := cache.Stats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}
