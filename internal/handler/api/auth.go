// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/mms-go/internal/middleware"
	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// AdminResponse represents an admin account in API responses.
type AdminResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func adminToResponse(a store.Admin) AdminResponse {
	return AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// loginRequest is the request body for admin login.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     AdminResponse `json:"admin"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteSuccess(w, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Admin:     adminToResponse(result.Admin),
	}, nil)
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Logout handles POST /api/auth/logout. Runs behind the auth
// middleware, so the token is present and valid.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		WriteUnauthorized(w, "Missing token")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"message": "Logged out"}, nil)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	admin, err := h.admins.Get(r.Context(), claims.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, adminToResponse(admin), nil)
}

// changePasswordRequest is the request body for changing a password.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword handles POST /api/auth/change-password. All sessions
// die on success, including the one making the request.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), claims.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"message": "Password changed, please log in again"}, nil)
}

func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IP:        middleware.GetClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// forgotPasswordRequest is the request body for starting a reset.
type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword handles POST /api/auth/forgot-password. The response
// is the same whether or not the email belongs to an admin.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email, requestMeta(r)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"message": "If that email has an account, a reset link is on its way"}, nil)
}

// resetPasswordRequest is the request body for completing a reset.
type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword, requestMeta(r)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"message": "Password reset, please log in"}, nil)
}

// ResetAuditResponse represents a reset audit entry in API responses.
type ResetAuditResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email,omitempty"`
	TokenPrefix string    `json:"token_prefix,omitempty"`
	IP          string    `json:"ip,omitempty"`
	Device      string    `json:"device,omitempty"`
	Country     string    `json:"country,omitempty"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResetAuditLog handles GET /api/admin/audit/password-resets.
func (h *Handler) ResetAuditLog(w http.ResponseWriter, r *http.Request) {
	page, perPage, offset := parsePagination(r)
	email := r.URL.Query().Get("email")

	entries, err := h.auth.AuditLog(r.Context(), email, int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]ResetAuditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ResetAuditResponse{
			ID:          e.ID,
			Email:       e.Email,
			TokenPrefix: e.TokenPrefix,
			IP:          e.IP,
			Device:      e.Device,
			Country:     e.Country,
			Status:      e.Status,
			Reason:      e.Reason,
			Type:        e.Type,
			CreatedAt:   e.CreatedAt,
		})
	}
	WriteSuccess(w, out, &Meta{Page: page, PerPage: perPage})
}
