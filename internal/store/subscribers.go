// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Subscriber is a persisted newsletter subscriber row.
type Subscriber struct {
	ID        int64
	Email     string
	Name      string
	CreatedAt time.Time
}

const subscriberColumns = `id, email, name, created_at`

func scanSubscriber(row interface{ Scan(...any) error }) (Subscriber, error) {
	var s Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.Name, &s.CreatedAt)
	return s, err
}

// CreateSubscriberParams holds the fields for creating a subscriber.
type CreateSubscriberParams struct {
	Email     string
	Name      string
	CreatedAt time.Time
}

// CreateSubscriber inserts a subscriber and returns the created row.
// The unique index on email turns duplicate inserts into an error.
func (q *Queries) CreateSubscriber(ctx context.Context, arg CreateSubscriberParams) (Subscriber, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO subscribers (email, name, created_at) VALUES (?, ?, ?)`,
		arg.Email, arg.Name, arg.CreatedAt)
	if err != nil {
		return Subscriber{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Subscriber{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`, id)
	return scanSubscriber(row)
}

// GetSubscriberByID returns a subscriber by primary key.
func (q *Queries) GetSubscriberByID(ctx context.Context, id int64) (Subscriber, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`, id)
	return scanSubscriber(row)
}

// GetSubscriberByEmail returns a subscriber by email.
func (q *Queries) GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE email = ?`, email)
	return scanSubscriber(row)
}

// ListSubscribers returns all subscribers, newest first.
func (q *Queries) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// CountSubscribers returns the total number of subscribers.
func (q *Queries) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n)
	return n, err
}

// DeleteSubscriber removes a subscriber.
func (q *Queries) DeleteSubscriber(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, id)
	return err
}

// CountSubscribersByMonth returns per-month subscriber signup counts,
// newest month first.
func (q *Queries) CountSubscribersByMonth(ctx context.Context, months int64) ([]MonthlyCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 7) AS month, COUNT(*)
		FROM subscribers
		GROUP BY month
		ORDER BY month DESC
		LIMIT ?`, months)
	if err != nil {
		return nil, err
	}
	return scanMonthlyCounts(rows)
}
