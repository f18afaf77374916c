// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/mms-go/internal/middleware"
	"github.com/olegiv/mms-go/internal/service"
)

// Admin account management. Every handler here runs behind the
// superadmin middleware.

// createAdminRequest is the request body for creating an admin.
type createAdminRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin superadmin"`
}

// CreateAdmin handles POST /api/admin/admins.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	admin, err := h.admins.Create(r.Context(), service.AdminInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("admins", "created")
	WriteCreated(w, adminToResponse(admin))
}

// ListAdmins handles GET /api/admin/admins.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]AdminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, adminToResponse(a))
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}

// setRoleRequest is the request body for changing an admin's role.
type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin superadmin"`
}

// SetAdminRole handles PUT /api/admin/admins/{id}/role.
func (h *Handler) SetAdminRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid admin ID", nil)
		return
	}

	var req setRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	admin, err := h.admins.SetRole(r.Context(), id, req.Role)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("admins", "updated")
	WriteSuccess(w, adminToResponse(admin), nil)
}

// DeleteAdmin handles DELETE /api/admin/admins/{id}.
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid admin ID", nil)
		return
	}

	claims := middleware.GetClaims(r)
	if claims == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.admins.Delete(r.Context(), id, claims.ID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("admins", "deleted")
	WriteSuccess(w, map[string]string{"message": "Admin deleted"}, nil)
}
