// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Newsletter is a persisted newsletter row. Content is the markdown
// source; ContentHTML is the rendered, sanitized body sent to subscribers.
type Newsletter struct {
	ID          int64
	Subject     string
	Content     string
	ContentHTML string
	Recipients  int64
	Status      string
	Error       string
	QueuedAt    sql.NullTime
	SentAt      sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const newsletterColumns = `id, subject, content, content_html, recipients, status, error, queued_at, sent_at, created_at, updated_at`

func scanNewsletter(row interface{ Scan(...any) error }) (Newsletter, error) {
	var n Newsletter
	err := row.Scan(&n.ID, &n.Subject, &n.Content, &n.ContentHTML, &n.Recipients,
		&n.Status, &n.Error, &n.QueuedAt, &n.SentAt, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// CreateNewsletterParams holds the fields for creating a newsletter draft.
type CreateNewsletterParams struct {
	Subject     string
	Content     string
	ContentHTML string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateNewsletter inserts a draft newsletter and returns the created row.
func (q *Queries) CreateNewsletter(ctx context.Context, arg CreateNewsletterParams) (Newsletter, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO newsletters (subject, content, content_html, status, created_at, updated_at)
		VALUES (?, ?, ?, 'draft', ?, ?)`,
		arg.Subject, arg.Content, arg.ContentHTML, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Newsletter{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Newsletter{}, err
	}
	return q.GetNewsletterByID(ctx, id)
}

// GetNewsletterByID returns a newsletter by primary key.
func (q *Queries) GetNewsletterByID(ctx context.Context, id int64) (Newsletter, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+newsletterColumns+` FROM newsletters WHERE id = ?`, id)
	return scanNewsletter(row)
}

// ListNewslettersParams holds pagination for listing newsletters.
type ListNewslettersParams struct {
	Limit  int64
	Offset int64
}

// ListNewsletters returns newsletters, newest first.
func (q *Queries) ListNewsletters(ctx context.Context, arg ListNewslettersParams) ([]Newsletter, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+newsletterColumns+` FROM newsletters ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var newsletters []Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, err
		}
		newsletters = append(newsletters, n)
	}
	return newsletters, rows.Err()
}

// ListNewslettersByStatus returns all newsletters in the given status,
// oldest first. The send drainer uses this to work queued items in order.
func (q *Queries) ListNewslettersByStatus(ctx context.Context, status string) ([]Newsletter, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+newsletterColumns+` FROM newsletters WHERE status = ? ORDER BY queued_at ASC, created_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var newsletters []Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, err
		}
		newsletters = append(newsletters, n)
	}
	return newsletters, rows.Err()
}

// CountNewsletters returns the total number of newsletters.
func (q *Queries) CountNewsletters(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletters`).Scan(&n)
	return n, err
}

// UpdateNewsletterParams holds the updatable draft fields.
type UpdateNewsletterParams struct {
	ID          int64
	Subject     string
	Content     string
	ContentHTML string
	UpdatedAt   time.Time
}

// UpdateNewsletterDraft updates a newsletter's content while it is still
// a draft. Returns the number of rows changed; zero means the newsletter
// was not found or has already left the draft status.
func (q *Queries) UpdateNewsletterDraft(ctx context.Context, arg UpdateNewsletterParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE newsletters
		SET subject = ?, content = ?, content_html = ?, updated_at = ?
		WHERE id = ? AND status = 'draft'`,
		arg.Subject, arg.Content, arg.ContentHTML, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// QueueNewsletter moves a draft newsletter to queued. The status
// predicate makes the transition atomic: zero rows affected means the
// newsletter was not a draft.
func (q *Queries) QueueNewsletter(ctx context.Context, id int64, queuedAt time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE newsletters
		SET status = 'queued', queued_at = ?, updated_at = ?
		WHERE id = ? AND status = 'draft'`,
		queuedAt, queuedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkNewsletterSending claims a queued newsletter for delivery.
func (q *Queries) MarkNewsletterSending(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE newsletters
		SET status = 'sending', updated_at = ?
		WHERE id = ? AND status = 'queued'`,
		now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkNewsletterSent records a completed delivery with its recipient count.
func (q *Queries) MarkNewsletterSent(ctx context.Context, id int64, recipients int64, sentAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE newsletters
		SET status = 'sent', recipients = ?, sent_at = ?, error = '', updated_at = ?
		WHERE id = ? AND status = 'sending'`,
		recipients, sentAt, sentAt, id)
	return err
}

// MarkNewsletterFailed records a delivery failure.
func (q *Queries) MarkNewsletterFailed(ctx context.Context, id int64, errMsg string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE newsletters
		SET status = 'failed', error = ?, updated_at = ?
		WHERE id = ? AND status = 'sending'`,
		errMsg, now, id)
	return err
}

// DeleteNewsletterDraft removes a newsletter that is still a draft.
// Returns the number of rows deleted.
func (q *Queries) DeleteNewsletterDraft(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM newsletters WHERE id = ? AND status = 'draft'`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
