// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// AdminSession is a persisted session row. Token holds the SHA-256 hex
// digest of the issued JWT, never the token itself.
type AdminSession struct {
	ID        int64
	AdminID   int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

const sessionColumns = `id, admin_id, token, created_at, expires_at`

func scanSession(row interface{ Scan(...any) error }) (AdminSession, error) {
	var s AdminSession
	err := row.Scan(&s.ID, &s.AdminID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}

// CreateSessionParams holds the fields for creating a session.
type CreateSessionParams struct {
	AdminID   int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateSession inserts a session row for an issued token.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (AdminSession, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (admin_id, token, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		arg.AdminID, arg.Token, arg.CreatedAt, arg.ExpiresAt)
	if err != nil {
		return AdminSession{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return AdminSession{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM admin_sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetSessionByToken returns a live session for the given token digest.
func (q *Queries) GetSessionByToken(ctx context.Context, token string, now time.Time) (AdminSession, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM admin_sessions WHERE token = ? AND expires_at > ?`, token, now)
	return scanSession(row)
}

// DeleteSessionByToken removes a single session. Returns rows deleted.
func (q *Queries) DeleteSessionByToken(ctx context.Context, token string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSessionsForAdmin removes every session for an admin. Called on
// password change and reset so stolen tokens die with the old password.
func (q *Queries) DeleteSessionsForAdmin(ctx context.Context, adminID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE admin_id = ?`, adminID)
	return err
}

// PurgeExpiredSessions removes sessions past their expiry. Returns rows deleted.
func (q *Queries) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ResetToken is a persisted password-reset token row. One row per admin:
// requesting a new reset replaces the previous token.
type ResetToken struct {
	AdminID   int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UpsertResetTokenParams holds the fields for issuing a reset token.
type UpsertResetTokenParams struct {
	AdminID   int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UpsertResetToken issues a reset token, replacing any existing one for
// the admin.
func (q *Queries) UpsertResetToken(ctx context.Context, arg UpsertResetTokenParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO reset_tokens (admin_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(admin_id) DO UPDATE SET token = excluded.token,
			expires_at = excluded.expires_at, created_at = excluded.created_at`,
		arg.AdminID, arg.Token, arg.ExpiresAt, arg.CreatedAt)
	return err
}

// GetResetToken returns a live reset token row by token value.
func (q *Queries) GetResetToken(ctx context.Context, token string, now time.Time) (ResetToken, error) {
	var rt ResetToken
	err := q.db.QueryRowContext(ctx,
		`SELECT admin_id, token, expires_at, created_at FROM reset_tokens WHERE token = ? AND expires_at > ?`,
		token, now).Scan(&rt.AdminID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	return rt, err
}

// DeleteResetToken consumes an admin's reset token.
func (q *Queries) DeleteResetToken(ctx context.Context, adminID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE admin_id = ?`, adminID)
	return err
}

// PurgeExpiredResetTokens removes reset tokens past their expiry.
func (q *Queries) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ResetAudit is an append-only password-reset audit row.
type ResetAudit struct {
	ID          int64
	Email       string
	TokenPrefix string
	IP          string
	UserAgent   string
	Device      string
	Country     string
	Status      string
	Reason      string
	Type        string
	CreatedAt   time.Time
}

const resetAuditColumns = `id, email, token_prefix, ip, user_agent, device, country, status, reason, type, created_at`

// CreateResetAuditParams holds the fields for one audit entry.
type CreateResetAuditParams struct {
	Email       string
	TokenPrefix string
	IP          string
	UserAgent   string
	Device      string
	Country     string
	Status      string
	Reason      string
	Type        string
	CreatedAt   time.Time
}

// CreateResetAudit appends a password-reset audit entry. Audit rows are
// never updated or deleted.
func (q *Queries) CreateResetAudit(ctx context.Context, arg CreateResetAuditParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO password_reset_audit (email, token_prefix, ip, user_agent, device, country, status, reason, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Email, arg.TokenPrefix, arg.IP, arg.UserAgent, arg.Device,
		arg.Country, arg.Status, arg.Reason, arg.Type, arg.CreatedAt)
	return err
}

// ListResetAuditParams holds filtering and pagination for the audit log.
type ListResetAuditParams struct {
	Email  string // empty = all
	Limit  int64
	Offset int64
}

// ListResetAudit returns audit entries, newest first, optionally
// filtered by email.
func (q *Queries) ListResetAudit(ctx context.Context, arg ListResetAuditParams) ([]ResetAudit, error) {
	query := `SELECT ` + resetAuditColumns + ` FROM password_reset_audit ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args := []any{arg.Limit, arg.Offset}
	if arg.Email != "" {
		query = `SELECT ` + resetAuditColumns + ` FROM password_reset_audit WHERE email = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
		args = []any{arg.Email, arg.Limit, arg.Offset}
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ResetAudit
	for rows.Next() {
		var a ResetAudit
		if err := rows.Scan(&a.ID, &a.Email, &a.TokenPrefix, &a.IP, &a.UserAgent,
			&a.Device, &a.Country, &a.Status, &a.Reason, &a.Type, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
