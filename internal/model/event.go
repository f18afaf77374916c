// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event types. The type determines which location fields are meaningful:
// physical events carry venue/address, virtual events carry a meeting URL.
const (
	EventTypePhysical = "physical"
	EventTypeVirtual  = "virtual"
)

// IsValidEventType reports whether s is a known event type.
func IsValidEventType(s string) bool {
	return s == EventTypePhysical || s == EventTypeVirtual
}
