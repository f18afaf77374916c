// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Event is a persisted event row. EventID is the public slug+suffix identifier.
type Event struct {
	ID            int64
	EventID       string
	Title         string
	Description   string
	EventType     string
	Venue         string
	Address       string
	MeetingURL    string
	StartTime     time.Time
	EndTime       time.Time
	Capacity      int64
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const eventColumns = `id, event_id, title, description, event_type, venue, address, meeting_url, start_time, end_time, capacity, cover_image_url, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.EventID, &e.Title, &e.Description, &e.EventType,
		&e.Venue, &e.Address, &e.MeetingURL, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.CoverImageURL, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// CreateEventParams holds the fields for creating an event.
type CreateEventParams struct {
	EventID       string
	Title         string
	Description   string
	EventType     string
	Venue         string
	Address       string
	MeetingURL    string
	StartTime     time.Time
	EndTime       time.Time
	Capacity      int64
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateEvent inserts an event and returns the created row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO events (event_id, title, description, event_type, venue, address, meeting_url, start_time, end_time, capacity, cover_image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.EventID, arg.Title, arg.Description, arg.EventType, arg.Venue, arg.Address,
		arg.MeetingURL, arg.StartTime, arg.EndTime, arg.Capacity, arg.CoverImageURL,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// GetEventByEventID returns an event by its public identifier.
func (q *Queries) GetEventByEventID(ctx context.Context, eventID string) (Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = ?`, eventID)
	return scanEvent(row)
}

// ListEventsParams holds pagination for listing events.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns events ordered by start time, soonest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// EventIDExists reports whether an event with the given public identifier exists.
func (q *Queries) EventIDExists(ctx context.Context, eventID string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE event_id = ?`, eventID).Scan(&n)
	return n > 0, err
}

// UpdateEventParams holds the full set of updatable event fields.
type UpdateEventParams struct {
	EventID       string
	Title         string
	Description   string
	EventType     string
	Venue         string
	Address       string
	MeetingURL    string
	StartTime     time.Time
	EndTime       time.Time
	Capacity      int64
	CoverImageURL string
	UpdatedAt     time.Time
}

// UpdateEvent updates an event (keyed by its public identifier) and returns the updated row.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, event_type = ?, venue = ?, address = ?,
		    meeting_url = ?, start_time = ?, end_time = ?, capacity = ?, cover_image_url = ?, updated_at = ?
		WHERE event_id = ?`,
		arg.Title, arg.Description, arg.EventType, arg.Venue, arg.Address,
		arg.MeetingURL, arg.StartTime, arg.EndTime, arg.Capacity, arg.CoverImageURL,
		arg.UpdatedAt, arg.EventID)
	if err != nil {
		return Event{}, err
	}
	return q.GetEventByEventID(ctx, arg.EventID)
}

// DeleteEvent removes an event and its registrations.
func (q *Queries) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID)
	return err
}

// EventRegistration is a persisted registration row.
type EventRegistration struct {
	ID               int64
	EventID          string
	RegistrationCode string
	Name             string
	Email            string
	Phone            string
	CreatedAt        time.Time
}

const registrationColumns = `id, event_id, registration_code, name, email, phone, created_at`

func scanRegistration(row interface{ Scan(...any) error }) (EventRegistration, error) {
	var r EventRegistration
	err := row.Scan(&r.ID, &r.EventID, &r.RegistrationCode, &r.Name, &r.Email, &r.Phone, &r.CreatedAt)
	return r, err
}

// CreateEventRegistrationParams holds the fields for creating a registration.
type CreateEventRegistrationParams struct {
	EventID          string
	RegistrationCode string
	Name             string
	Email            string
	Phone            string
	CreatedAt        time.Time
}

// CreateEventRegistration inserts a registration and returns the created row.
func (q *Queries) CreateEventRegistration(ctx context.Context, arg CreateEventRegistrationParams) (EventRegistration, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO event_registrations (event_id, registration_code, name, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.EventID, arg.RegistrationCode, arg.Name, arg.Email, arg.Phone, arg.CreatedAt)
	if err != nil {
		return EventRegistration{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return EventRegistration{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM event_registrations WHERE id = ?`, id)
	return scanRegistration(row)
}

// ListRegistrationsForEvent returns all registrations for an event, oldest first.
func (q *Queries) ListRegistrationsForEvent(ctx context.Context, eventID string) ([]EventRegistration, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id = ? ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []EventRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

// CountRegistrationsForEvent returns the number of registrations for an event.
func (q *Queries) CountRegistrationsForEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// RegistrationCodeExists reports whether a registration code is already taken.
func (q *Queries) RegistrationCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE registration_code = ?`, code).Scan(&n)
	return n > 0, err
}
