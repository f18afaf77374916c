// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/model"
)

// Default superadmin credentials, created on first start when the
// admins table is empty. Change the password immediately.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
)

// Seed creates the initial superadmin account when no admins exist,
// so a fresh install can log in at all.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	admin, err := queries.CreateAdmin(ctx, CreateAdminParams{
		Username:     DefaultAdminUsername,
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleSuperadmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Two instances racing on an empty table: the unique index
		// decides, the loser just keeps the winner's account.
		if IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("creating default superadmin: %w", err)
	}

	slog.Warn("created default superadmin, change the password now",
		"id", admin.ID,
		"username", admin.Username,
		"password", DefaultAdminPassword,
	)
	return nil
}
