// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Admin is a persisted admin account row.
type Admin struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const adminColumns = `id, username, email, password_hash, role, created_at, updated_at`

func scanAdmin(row interface{ Scan(...any) error }) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateAdminParams holds the fields for creating an admin.
type CreateAdminParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAdmin inserts an admin and returns the created row.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO admins (username, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Username, arg.Email, arg.PasswordHash, arg.Role, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Admin{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Admin{}, err
	}
	return q.GetAdminByID(ctx, id)
}

// GetAdminByID returns an admin by primary key.
func (q *Queries) GetAdminByID(ctx context.Context, id int64) (Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	return scanAdmin(row)
}

// GetAdminByUsername returns an admin by username.
func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE username = ?`, username)
	return scanAdmin(row)
}

// GetAdminByEmail returns an admin by email.
func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = ?`, email)
	return scanAdmin(row)
}

// ListAdmins returns all admins, oldest first.
func (q *Queries) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// CountAdmins returns the total number of admins.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}

// CountSuperadmins returns the number of superadmin accounts. Used to
// refuse demoting or deleting the last one.
func (q *Queries) CountSuperadmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE role = 'superadmin'`).Scan(&n)
	return n, err
}

// UpdateAdminRole changes an admin's role.
func (q *Queries) UpdateAdminRole(ctx context.Context, id int64, role string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE admins SET role = ?, updated_at = ? WHERE id = ?`, role, updatedAt, id)
	return err
}

// UpdateAdminPassword replaces an admin's password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, updatedAt, id)
	return err
}

// DeleteAdmin removes an admin. Sessions and reset tokens cascade.
func (q *Queries) DeleteAdmin(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	return err
}
