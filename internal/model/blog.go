// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and validation helpers shared
// by the store, services and HTTP handlers.
package model

// Blog post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// IsValidPostStatus reports whether s is a known blog post status.
func IsValidPostStatus(s string) bool {
	return s == PostStatusDraft || s == PostStatusPublished
}
