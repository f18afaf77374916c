// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/geoip"
	"github.com/olegiv/mms-go/internal/mail"
	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
	"github.com/olegiv/mms-go/internal/util"
)

const (
	resetTokenBytes = 32
	resetTokenTTL   = time.Hour

	// tokenPrefixLen is how much of a reset token lands in the audit
	// trail. Enough to correlate request and use, useless to an attacker.
	tokenPrefixLen = 8
)

// AuthService handles admin login, logout, and the password reset flow.
type AuthService struct {
	queries *store.Queries
	issuer  *auth.TokenIssuer
	mailer  mail.Mailer
	geo     *geoip.Lookup

	// resetBaseURL is the frontend page the emailed reset link points
	// to; the token is appended as a query parameter.
	resetBaseURL string
	resetTTL     time.Duration
}

// NewAuthService creates an auth service.
func NewAuthService(queries *store.Queries, issuer *auth.TokenIssuer, mailer mail.Mailer, geo *geoip.Lookup, resetBaseURL string) *AuthService {
	return &AuthService{
		queries:      queries,
		issuer:       issuer,
		mailer:       mailer,
		geo:          geo,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
		resetTTL:     resetTokenTTL,
	}
}

// SetResetTTL overrides the default reset token lifetime.
func (s *AuthService) SetResetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.resetTTL = ttl
	}
}

// LoginResult is what a successful login returns to the route layer.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     store.Admin
}

// Login verifies credentials, issues a token, and records a session row
// keyed by the token digest. Unknown username and wrong password return
// the same error so the endpoint doesn't leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	admin, err := s.queries.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, sql.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	ok, err := auth.CheckPassword(password, admin.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(admin.ID, admin.Username, admin.Role)
	if err != nil {
		return LoginResult{}, err
	}

	_, err = s.queries.CreateSession(ctx, store.CreateSessionParams{
		AdminID:   admin.ID,
		Token:     auth.TokenDigest(token),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

// Logout deletes the session row for a token, revoking it even though
// the JWT itself stays cryptographically valid until expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	affected, err := s.queries.DeleteSessionByToken(ctx, auth.TokenDigest(token))
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangePassword updates an admin's password after verifying the
// current one, then kills every live session for the account.
func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, current, next string) error {
	if len(next) < 8 {
		return Validation("password", "password must be at least 8 characters")
	}

	admin, err := s.queries.GetAdminByID(ctx, adminID)
	if err != nil {
		return mapNoRows(err)
	}

	ok, err := auth.CheckPassword(current, admin.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.queries.UpdateAdminPassword(ctx, adminID, hash, time.Now().UTC()); err != nil {
		return err
	}
	return s.queries.DeleteSessionsForAdmin(ctx, adminID)
}

// RequestMeta carries the request-level facts recorded in the reset
// audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

func (s *AuthService) audit(ctx context.Context, email, tokenPrefix, status, reason, typ string, meta RequestMeta) {
	device := ""
	if meta.UserAgent != "" {
		parsed := ua.Parse(meta.UserAgent)
		device = strings.TrimSpace(fmt.Sprintf("%s %s / %s %s",
			parsed.Name, parsed.Version, parsed.OS, parsed.OSVersion))
	}

	country := ""
	if s.geo != nil {
		country = s.geo.LookupCountry(meta.IP)
	}

	err := s.queries.CreateResetAudit(ctx, store.CreateResetAuditParams{
		Email:       email,
		TokenPrefix: tokenPrefix,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Device:      device,
		Country:     country,
		Status:      status,
		Reason:      reason,
		Type:        typ,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		slog.Error("writing reset audit entry", "email", email, "error", err)
	}
}

// ForgotPassword starts the reset flow. The response is identical
// whether or not the email belongs to an admin; only the audit trail
// records the difference. A mail failure is audited but does not
// surface to the caller either.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, meta RequestMeta) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Validation("email", "a valid email is required")
	}

	admin, err := s.queries.GetAdminByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.audit(ctx, email, "", model.AuditStatusRejected, "no account for email", model.AuditTypeRequest, meta)
		return nil
	}
	if err != nil {
		return err
	}

	token, err := util.RandomHex(resetTokenBytes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = s.queries.UpsertResetToken(ctx, store.UpsertResetTokenParams{
		AdminID:   admin.ID,
		Token:     token,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	prefix := token[:tokenPrefixLen]
	s.audit(ctx, email, prefix, model.AuditStatusRequested, "", model.AuditTypeRequest, meta)

	resetURL := fmt.Sprintf("%s/admin/reset-password?token=%s", s.resetBaseURL, token)
	if err := s.mailer.Send(ctx, mail.ResetEmail(email, resetURL)); err != nil {
		slog.Error("sending reset email", "email", email, "error", err)
		s.audit(ctx, email, prefix, model.AuditStatusFailed, err.Error(), model.AuditTypeRequest, meta)
		return nil
	}
	s.audit(ctx, email, prefix, model.AuditStatusSent, "", model.AuditTypeRequest, meta)
	return nil
}

// ResetPassword consumes a reset token and sets a new password. All of
// the admin's sessions die with the old password.
func (s *AuthService) ResetPassword(ctx context.Context, token, next string, meta RequestMeta) error {
	if len(next) < 8 {
		return Validation("password", "password must be at least 8 characters")
	}

	prefix := token
	if len(prefix) > tokenPrefixLen {
		prefix = prefix[:tokenPrefixLen]
	}

	rt, err := s.queries.GetResetToken(ctx, token, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		s.audit(ctx, "", prefix, model.AuditStatusRejected, "unknown or expired token", model.AuditTypeReset, meta)
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	admin, err := s.queries.GetAdminByID(ctx, rt.AdminID)
	if err != nil {
		return mapNoRows(err)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.queries.UpdateAdminPassword(ctx, admin.ID, hash, now); err != nil {
		return err
	}
	if err := s.queries.DeleteResetToken(ctx, admin.ID); err != nil {
		return err
	}
	if err := s.queries.DeleteSessionsForAdmin(ctx, admin.ID); err != nil {
		return err
	}

	s.audit(ctx, admin.Email, prefix, model.AuditStatusUsed, "", model.AuditTypeReset, meta)
	return nil
}

// AuditLog returns password-reset audit entries, newest first.
func (s *AuthService) AuditLog(ctx context.Context, email string, limit, offset int64) ([]store.ResetAudit, error) {
	entries, err := s.queries.ListResetAudit(ctx, store.ListResetAuditParams{Email: email, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []store.ResetAudit{}
	}
	return entries, nil
}
