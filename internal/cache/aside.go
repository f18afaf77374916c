// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// DefaultTTL is the expiry applied to cache-aside fills when the caller
// does not override it.
const DefaultTTL = 5 * time.Minute

// GetJSON tries to read and decode a cached value. The second return is
// true only on a clean hit. A nil cache, any cache error, and malformed
// cached JSON all count as a miss: the cache can only ever make reads
// faster, never make them fail.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	data, err := c.Get(ctx, key)
	if err != nil {
		if err != ErrCacheMiss {
			slog.Debug("cache get failed", "key", key, "error", err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		slog.Debug("cache entry malformed", "key", key, "error", err)
		return zero, false
	}
	return value, true
}

// FillJSON encodes and stores a value after a miss. Failures are logged
// at debug level and swallowed. TTL 0 means DefaultTTL.
func FillJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Debug("cache marshal failed", "key", key, "error", err)
		return
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err)
	}
}

// Invalidate deletes the given keys, logging failures without
// propagating them. Mutation handlers call this after successful writes.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.DeleteMany(ctx, keys...); err != nil {
		slog.Debug("cache invalidate failed", "keys", keys, "error", err)
	}
}
