// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// User is a persisted member account row.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, email, name, password_hash, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts an active user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)`,
		arg.Email, arg.Name, arg.PasswordHash, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID returns a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersParams holds pagination for listing users.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns users, newest first. Deactivated users are included;
// callers filter on IsActive where it matters.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountActiveUsers returns the number of active users.
func (q *Queries) CountActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = 1`).Scan(&n)
	return n, err
}

// UpdateUserParams holds the updatable user profile fields.
type UpdateUserParams struct {
	ID        int64
	Email     string
	Name      string
	UpdatedAt time.Time
}

// UpdateUser updates a user's profile fields and returns the updated row.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, updated_at = ? WHERE id = ?`,
		arg.Email, arg.Name, arg.UpdatedAt, arg.ID)
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, arg.ID)
}

// SetUserActive flips a user's active flag. Deactivation is the soft
// delete: the row survives so historical data keeps its owner.
func (q *Queries) SetUserActive(ctx context.Context, id int64, active bool, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, updatedAt, id)
	return err
}

// CountUsersByMonth returns per-month user signup counts, newest month first.
func (q *Queries) CountUsersByMonth(ctx context.Context, months int64) ([]MonthlyCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 7) AS month, COUNT(*)
		FROM users
		GROUP BY month
		ORDER BY month DESC
		LIMIT ?`, months)
	if err != nil {
		return nil, err
	}
	return scanMonthlyCounts(rows)
}
