// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

// Key builders for the entities served through the cache-aside read
// path. Keeping them in one place keeps read and invalidation sides in
// agreement about spelling.

// KeyBlogPost is the cache key for a single published post.
func KeyBlogPost(slug string) string {
	return "blog:post:" + slug
}

// KeyBlogPosts is the cache key for the public published-posts list.
const KeyBlogPosts = "blog:posts"

// KeyAdminBlogPosts is the cache key for the admin posts list.
const KeyAdminBlogPosts = "admin:blog:posts"

// KeyEvent is the cache key for a single event.
func KeyEvent(eventID string) string {
	return "events:" + eventID
}

// KeyEventsList is the cache key for the public events list.
const KeyEventsList = "events:list"

// KeyAdminEventsList is the cache key for the admin events list.
const KeyAdminEventsList = "admin:events:list"

// KeySubscriberStats is the cache key for the subscriber stats aggregate.
const KeySubscriberStats = "subscribers:stats"
