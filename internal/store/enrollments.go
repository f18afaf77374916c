// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Enrollment is a persisted course enrollment row. EnrollmentID is the
// public UUID identifier.
type Enrollment struct {
	ID           int64
	EnrollmentID string
	Course       string
	Name         string
	Email        string
	Phone        string
	Message      string
	CreatedAt    time.Time
}

const enrollmentColumns = `id, enrollment_id, course, name, email, phone, message, created_at`

func scanEnrollment(row interface{ Scan(...any) error }) (Enrollment, error) {
	var e Enrollment
	err := row.Scan(&e.ID, &e.EnrollmentID, &e.Course, &e.Name, &e.Email, &e.Phone, &e.Message, &e.CreatedAt)
	return e, err
}

// CreateEnrollmentParams holds the fields for creating an enrollment.
type CreateEnrollmentParams struct {
	EnrollmentID string
	Course       string
	Name         string
	Email        string
	Phone        string
	Message      string
	CreatedAt    time.Time
}

// CreateEnrollment inserts an enrollment and returns the created row.
func (q *Queries) CreateEnrollment(ctx context.Context, arg CreateEnrollmentParams) (Enrollment, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO enrollments (enrollment_id, course, name, email, phone, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.EnrollmentID, arg.Course, arg.Name, arg.Email, arg.Phone, arg.Message, arg.CreatedAt)
	if err != nil {
		return Enrollment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Enrollment{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id)
	return scanEnrollment(row)
}

// GetEnrollmentByEnrollmentID returns an enrollment by its public identifier.
func (q *Queries) GetEnrollmentByEnrollmentID(ctx context.Context, enrollmentID string) (Enrollment, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE enrollment_id = ?`, enrollmentID)
	return scanEnrollment(row)
}

// ListEnrollmentsParams holds filtering and pagination for listing enrollments.
type ListEnrollmentsParams struct {
	Course string // empty = all courses
	Limit  int64
	Offset int64
}

// ListEnrollments returns enrollments, newest first, optionally filtered by course.
func (q *Queries) ListEnrollments(ctx context.Context, arg ListEnrollmentsParams) ([]Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args := []any{arg.Limit, arg.Offset}
	if arg.Course != "" {
		query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
		args = []any{arg.Course, arg.Limit, arg.Offset}
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// CountEnrollments returns the number of enrollments, optionally filtered by course.
func (q *Queries) CountEnrollments(ctx context.Context, course string) (int64, error) {
	var n int64
	var err error
	if course != "" {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course = ?`, course).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments`).Scan(&n)
	}
	return n, err
}

// DeleteEnrollment removes an enrollment by its public identifier.
func (q *Queries) DeleteEnrollment(ctx context.Context, enrollmentID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM enrollments WHERE enrollment_id = ?`, enrollmentID)
	return err
}

// CountEnrollmentsByMonth returns per-month enrollment counts, newest month first.
func (q *Queries) CountEnrollmentsByMonth(ctx context.Context, months int64) ([]MonthlyCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 7) AS month, COUNT(*)
		FROM enrollments
		GROUP BY month
		ORDER BY month DESC
		LIMIT ?`, months)
	if err != nil {
		return nil, err
	}
	return scanMonthlyCounts(rows)
}
