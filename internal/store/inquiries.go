// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// ContactInquiry is a persisted contact-form inquiry row.
type ContactInquiry struct {
	ID            int64
	Name          string
	Email         string
	Subject       string
	Message       string
	Status        string
	AdminResponse string
	RespondedAt   sql.NullTime
	CreatedAt     time.Time
}

const inquiryColumns = `id, name, email, subject, message, status, admin_response, responded_at, created_at`

func scanInquiry(row interface{ Scan(...any) error }) (ContactInquiry, error) {
	var i ContactInquiry
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Subject, &i.Message, &i.Status,
		&i.AdminResponse, &i.RespondedAt, &i.CreatedAt)
	return i, err
}

// CreateInquiryParams holds the fields for creating an inquiry.
type CreateInquiryParams struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// CreateInquiry inserts a pending inquiry and returns the created row.
func (q *Queries) CreateInquiry(ctx context.Context, arg CreateInquiryParams) (ContactInquiry, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO contact_inquiries (name, email, subject, message, status, created_at)
		VALUES (?, ?, ?, ?, 'pending', ?)`,
		arg.Name, arg.Email, arg.Subject, arg.Message, arg.CreatedAt)
	if err != nil {
		return ContactInquiry{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ContactInquiry{}, err
	}
	return q.GetInquiryByID(ctx, id)
}

// GetInquiryByID returns an inquiry by primary key.
func (q *Queries) GetInquiryByID(ctx context.Context, id int64) (ContactInquiry, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM contact_inquiries WHERE id = ?`, id)
	return scanInquiry(row)
}

// ListInquiriesParams holds filtering and pagination for listing inquiries.
type ListInquiriesParams struct {
	Status string // empty = all statuses
	Limit  int64
	Offset int64
}

// ListInquiries returns inquiries, newest first, optionally filtered by status.
func (q *Queries) ListInquiries(ctx context.Context, arg ListInquiriesParams) ([]ContactInquiry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if arg.Status != "" {
		rows, err = q.db.QueryContext(ctx,
			`SELECT `+inquiryColumns+` FROM contact_inquiries WHERE status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			arg.Status, arg.Limit, arg.Offset)
	} else {
		rows, err = q.db.QueryContext(ctx,
			`SELECT `+inquiryColumns+` FROM contact_inquiries ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			arg.Limit, arg.Offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []ContactInquiry
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, i)
	}
	return inquiries, rows.Err()
}

// CountInquiries returns the number of inquiries, optionally filtered by status.
func (q *Queries) CountInquiries(ctx context.Context, status string) (int64, error) {
	var n int64
	var err error
	if status != "" {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_inquiries WHERE status = ?`, status).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_inquiries`).Scan(&n)
	}
	return n, err
}

// RespondToInquiryParams holds the fields for recording an admin response.
type RespondToInquiryParams struct {
	ID            int64
	AdminResponse string
	RespondedAt   time.Time
}

// RespondToInquiry records an admin response on a pending inquiry.
// The status predicate enforces the pending -> responded transition.
func (q *Queries) RespondToInquiry(ctx context.Context, arg RespondToInquiryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE contact_inquiries
		SET status = 'responded', admin_response = ?, responded_at = ?
		WHERE id = ? AND status = 'pending'`,
		arg.AdminResponse, arg.RespondedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CloseInquiry marks an inquiry closed.
func (q *Queries) CloseInquiry(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE contact_inquiries SET status = 'closed' WHERE id = ?`, id)
	return err
}

// DeleteInquiry removes an inquiry.
func (q *Queries) DeleteInquiry(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contact_inquiries WHERE id = ?`, id)
	return err
}
