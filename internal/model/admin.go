// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Admin roles. Only superadmins may manage other admin accounts.
const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// IsValidRole reports whether s is a known admin role.
func IsValidRole(s string) bool {
	return s == RoleAdmin || s == RoleSuperadmin
}

// Password reset audit statuses and types.
const (
	AuditStatusRequested = "requested"
	AuditStatusSent      = "sent"
	AuditStatusFailed    = "failed"
	AuditStatusUsed      = "used"
	AuditStatusRejected  = "rejected"

	AuditTypeRequest = "request"
	AuditTypeReset   = "reset"
)
