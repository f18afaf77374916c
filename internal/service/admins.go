// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"time"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
)

// AdminService manages admin accounts. Callers are expected to have
// already passed the superadmin check in the route layer.
type AdminService struct {
	queries *store.Queries
}

// NewAdminService creates an admin service.
func NewAdminService(queries *store.Queries) *AdminService {
	return &AdminService{queries: queries}
}

// AdminInput holds the fields for creating an admin account.
type AdminInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Create creates an admin account.
func (s *AdminService) Create(ctx context.Context, in AdminInput) (store.Admin, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" {
		return store.Admin{}, Validation("username", "username is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return store.Admin{}, Validation("email", "a valid email is required")
	}
	if len(in.Password) < 8 {
		return store.Admin{}, Validation("password", "password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = model.RoleAdmin
	}
	if !model.IsValidRole(in.Role) {
		return store.Admin{}, Validation("role", "unknown role")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.Admin{}, err
	}

	now := time.Now().UTC()
	admin, err := s.queries.CreateAdmin(ctx, store.CreateAdminParams{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.Admin{}, ErrDuplicate
		}
		return store.Admin{}, err
	}
	return admin, nil
}

// Get returns an admin by ID.
func (s *AdminService) Get(ctx context.Context, id int64) (store.Admin, error) {
	admin, err := s.queries.GetAdminByID(ctx, id)
	return admin, mapNoRows(err)
}

// List returns all admin accounts, oldest first.
func (s *AdminService) List(ctx context.Context) ([]store.Admin, error) {
	return s.queries.ListAdmins(ctx)
}

// SetRole changes an admin's role. Demoting the last superadmin is
// refused: the system must always keep at least one account that can
// manage admins.
func (s *AdminService) SetRole(ctx context.Context, id int64, role string) (store.Admin, error) {
	if !model.IsValidRole(role) {
		return store.Admin{}, Validation("role", "unknown role")
	}

	admin, err := s.Get(ctx, id)
	if err != nil {
		return store.Admin{}, err
	}

	if admin.Role == model.RoleSuperadmin && role != model.RoleSuperadmin {
		n, err := s.queries.CountSuperadmins(ctx)
		if err != nil {
			return store.Admin{}, err
		}
		if n <= 1 {
			return store.Admin{}, ErrLastSuperadmin
		}
	}

	if err := s.queries.UpdateAdminRole(ctx, id, role, time.Now().UTC()); err != nil {
		return store.Admin{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes an admin account. The last superadmin cannot be
// deleted, and an admin cannot delete their own account (that path is
// too easy to hit by accident from the management screen).
func (s *AdminService) Delete(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return ErrConflict
	}

	admin, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if admin.Role == model.RoleSuperadmin {
		n, err := s.queries.CountSuperadmins(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastSuperadmin
		}
	}

	return s.queries.DeleteAdmin(ctx, id)
}
