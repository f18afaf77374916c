// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"time"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/store"
)

// UserService manages member accounts.
type UserService struct {
	queries *store.Queries
}

// NewUserService creates a user service.
func NewUserService(queries *store.Queries) *UserService {
	return &UserService{queries: queries}
}

// UserInput holds the writable fields of a member account. Password is
// optional: accounts created by an admin on a member's behalf start
// without a credential.
type UserInput struct {
	Email    string
	Name     string
	Password string
}

// Create registers a member account.
func (s *UserService) Create(ctx context.Context, in UserInput) (store.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return store.User{}, Validation("email", "a valid email is required")
	}

	var hash string
	if in.Password != "" {
		if len(in.Password) < 8 {
			return store.User{}, Validation("password", "password must be at least 8 characters")
		}
		var err error
		hash, err = auth.HashPassword(in.Password)
		if err != nil {
			return store.User{}, err
		}
	}

	now := time.Now().UTC()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.User{}, ErrDuplicate
		}
		return store.User{}, err
	}
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (store.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	return user, mapNoRows(err)
}

// List returns users with the total count.
func (s *UserService) List(ctx context.Context, limit, offset int64) ([]store.User, int64, error) {
	users, err := s.queries.ListUsers(ctx, store.ListUsersParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountUsers(ctx)
	return users, total, err
}

// Update changes a user's profile fields.
func (s *UserService) Update(ctx context.Context, id int64, email, name string) (store.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return store.User{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return store.User{}, Validation("email", "a valid email is required")
	}

	user, err := s.queries.UpdateUser(ctx, store.UpdateUserParams{
		ID:        id,
		Email:     email,
		Name:      strings.TrimSpace(name),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.User{}, ErrDuplicate
		}
		return store.User{}, err
	}
	return user, nil
}

// Deactivate soft-deletes a user. The row stays so aggregate stats
// keep counting the signup.
func (s *UserService) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.queries.SetUserActive(ctx, id, false, time.Now().UTC())
}

// Reactivate re-enables a deactivated user.
func (s *UserService) Reactivate(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.queries.SetUserActive(ctx, id, true, time.Now().UTC())
}

// UserStats aggregates user counts for the dashboard.
type UserStats struct {
	Total   int64                `json:"total"`
	Active  int64                `json:"active"`
	Monthly []store.MonthlyCount `json:"monthly"`
}

// Stats returns total, active, and per-month user signup counts.
func (s *UserService) Stats(ctx context.Context, months int64) (UserStats, error) {
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return UserStats{}, err
	}
	active, err := s.queries.CountActiveUsers(ctx)
	if err != nil {
		return UserStats{}, err
	}
	monthly, err := s.queries.CountUsersByMonth(ctx, months)
	if err != nil {
		return UserStats{}, err
	}
	if monthly == nil {
		monthly = []store.MonthlyCount{}
	}
	return UserStats{Total: total, Active: active, Monthly: monthly}, nil
}
