// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"mixed case", "My First Blog Post", "my-first-blog-post"},
		{"accents", "Café au Lait", "cafe-au-lait"},
		{"punctuation", "What's New? (2026 Edition)", "whats-new-2026-edition"},
		{"multiple spaces", "too   many    spaces", "too-many-spaces"},
		{"leading trailing", "  trimmed  ", "trimmed"},
		{"cyrillic", "Привет мир", "privet-mir"},
		{"numbers", "Top 10 Events", "top-10-events"},
		{"empty", "", ""},
		{"only symbols", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"hello", "hello-world", "a", "a1-b2", "hello-world-1"}
	invalid := []string{"", "-leading", "trailing-", "UPPER", "two--hyphens", "with space", "ünicode"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(8)
	if err != nil {
		t.Fatalf("RandomHex failed: %v", err)
	}
	if len(a) != 16 {
		t.Errorf("RandomHex(8) length = %d, want 16", len(a))
	}

	b, err := RandomHex(8)
	if err != nil {
		t.Fatalf("RandomHex failed: %v", err)
	}
	if a == b {
		t.Error("two RandomHex calls returned the same value")
	}
}
