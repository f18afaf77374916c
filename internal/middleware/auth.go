// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaims is the context key for the authenticated admin's claims.
const ContextKeyClaims ContextKey = "claims"

// APIError represents a JSON error response.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// Auth creates middleware that requires a valid bearer token backed by
// a live session row. A valid signature alone is not enough: logout and
// password changes delete the session, which kills the token early.
func Auth(issuer *auth.TokenIssuer, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
				return
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
				return
			}

			_, err = queries.GetSessionByToken(r.Context(), auth.TokenDigest(parts[1]), time.Now())
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("session lookup failed", "error", err)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session", nil)
					return
				}
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Session has been revoked", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperadmin creates middleware that restricts a route to
// superadmins. Must run after Auth.
func RequireSuperadmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r)
		if claims == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		if claims.Role != model.RoleSuperadmin {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Superadmin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims returns the authenticated admin's claims from the request
// context, or nil if the request is unauthenticated.
func GetClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	return claims
}

// GetClientIP extracts the client IP from the request.
func GetClientIP(r *http.Request) string {
	// X-Real-IP is set by reverse proxies
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// X-Forwarded-For can contain multiple IPs; take the first one
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip)
	}

	return r.RemoteAddr
}
