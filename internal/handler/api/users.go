// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// UserResponse represents a member account in API responses. The
// password hash never leaves the store layer.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userToResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// createUserRequest is the request body for registering a user.
type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), service.UserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("users", "created")
	WriteCreated(w, userToResponse(user))
}

// AdminListUsers handles GET /api/admin/users.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage, offset := parsePagination(r)

	users, total, err := h.users.List(r.Context(), int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	WriteSuccess(w, out, &Meta{Total: total, Page: page, PerPage: perPage})
}

// AdminGetUser handles GET /api/admin/users/{id}.
func (h *Handler) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, userToResponse(user), nil)
}

// updateUserRequest is the request body for updating a user profile.
type updateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// AdminUpdateUser handles PUT /api/admin/users/{id}.
func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), id, req.Email, req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("users", "updated")
	WriteSuccess(w, userToResponse(user), nil)
}

// AdminDeactivateUser handles DELETE /api/admin/users/{id}. Delete on
// this resource is the soft delete: the account is deactivated, never
// removed.
func (h *Handler) AdminDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.users.Deactivate(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("users", "deactivated")
	WriteSuccess(w, map[string]string{"message": "User deactivated"}, nil)
}

// AdminReactivateUser handles POST /api/admin/users/{id}/activate.
func (h *Handler) AdminReactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.users.Reactivate(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("users", "activated")
	WriteSuccess(w, map[string]string{"message": "User activated"}, nil)
}

// UserStats handles GET /api/admin/users/stats.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats(r.Context(), statsMonths)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, stats, nil)
}
