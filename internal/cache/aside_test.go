package cache

import (
	"context"
	"testing"
	"time"
)

type cachedPost struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func TestGetJSON_NilCache(t *testing.T) {
	ctx := context.Background()

	// A nil cache is a permanent miss, never a panic
	if _, ok := GetJSON[cachedPost](ctx, nil, "blog:post:x"); ok {
		t.Error("nil cache should always miss")
	}
	FillJSON(ctx, nil, "blog:post:x", cachedPost{}, 0)
	Invalidate(ctx, nil, "blog:post:x")
}

func TestGetJSON_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	want := cachedPost{Slug: "hello-world", Title: "Hello World"}

	if _, ok := GetJSON[cachedPost](ctx, c, KeyBlogPost(want.Slug)); ok {
		t.Fatal("expected initial miss")
	}

	FillJSON(ctx, c, KeyBlogPost(want.Slug), want, 0)

	got, ok := GetJSON[cachedPost](ctx, c, KeyBlogPost(want.Slug))
	if !ok {
		t.Fatal("expected hit after fill")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestGetJSON_MalformedEntry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "bad", []byte("{not json"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Malformed cached JSON counts as a miss, not an error
	if _, ok := GetJSON[cachedPost](ctx, c, "bad"); ok {
		t.Error("malformed entry should miss")
	}
}

func TestInvalidate(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	FillJSON(ctx, c, KeyBlogPosts, []cachedPost{{Slug: "a"}}, 0)
	FillJSON(ctx, c, KeyAdminBlogPosts, []cachedPost{{Slug: "a"}}, 0)

	Invalidate(ctx, c, KeyBlogPosts, KeyAdminBlogPosts)

	if _, ok := GetJSON[[]cachedPost](ctx, c, KeyBlogPosts); ok {
		t.Error("public list should be invalidated")
	}
	if _, ok := GetJSON[[]cachedPost](ctx, c, KeyAdminBlogPosts); ok {
		t.Error("admin list should be invalidated")
	}
}
