// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
	"github.com/olegiv/mms-go/internal/util"
)

// EventService manages events and their registrations.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates an event service.
func NewEventService(queries *store.Queries) *EventService {
	return &EventService{queries: queries}
}

// EventInput holds the writable fields of an event.
type EventInput struct {
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
}

func validateEventInput(in EventInput) error {
	if in.Title == "" {
		return Validation("title", "title is required")
	}
	if !model.IsValidEventType(in.EventType) {
		return Validation("event_type", "unknown event type")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return Validation("start_time", "start and end times are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return Validation("end_time", "end time must be after start time")
	}
	if in.Capacity < 0 {
		return Validation("capacity", "capacity cannot be negative")
	}
	if in.EventType == model.EventTypeVirtual && in.MeetingURL == "" {
		return Validation("meeting_url", "virtual events need a meeting URL")
	}
	return nil
}

// newEventID builds a public identifier: slugified title plus a random
// suffix so two events can share a title.
func (s *EventService) newEventID(ctx context.Context, title string) (string, error) {
	base := util.Slugify(title)
	for attempt := 0; attempt < 5; attempt++ {
		suffix, err := util.RandomHex(3)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s-%s", base, suffix)
		taken, err := s.queries.EventIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate event id for %q", title)
}

// Create creates an event.
func (s *EventService) Create(ctx context.Context, in EventInput) (store.Event, error) {
	if err := validateEventInput(in); err != nil {
		return store.Event{}, err
	}

	eventID, err := s.newEventID(ctx, in.Title)
	if err != nil {
		return store.Event{}, err
	}

	now := time.Now().UTC()
	event, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		EventID:       eventID,
		Title:         in.Title,
		Description:   in.Description,
		EventType:     in.EventType,
		Venue:         in.Venue,
		Address:       in.Address,
		MeetingURL:    in.MeetingURL,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		Capacity:      in.Capacity,
		CoverImageURL: in.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.Event{}, ErrDuplicate
		}
		return store.Event{}, err
	}
	return event, nil
}

// Get returns an event by its public identifier.
func (s *EventService) Get(ctx context.Context, eventID string) (store.Event, error) {
	event, err := s.queries.GetEventByEventID(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Event{}, ErrNotFound
	}
	return event, err
}

// List returns events with the total count.
func (s *EventService) List(ctx context.Context, limit, offset int64) ([]store.Event, int64, error) {
	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountEvents(ctx)
	return events, total, err
}

// Update replaces an event's writable fields. The public identifier is
// stable across title changes: registrations reference it.
func (s *EventService) Update(ctx context.Context, eventID string, in EventInput) (store.Event, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return store.Event{}, err
	}
	if err := validateEventInput(in); err != nil {
		return store.Event{}, err
	}

	return s.queries.UpdateEvent(ctx, store.UpdateEventParams{
		EventID:       eventID,
		Title:         in.Title,
		Description:   in.Description,
		EventType:     in.EventType,
		Venue:         in.Venue,
		Address:       in.Address,
		MeetingURL:    in.MeetingURL,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		Capacity:      in.Capacity,
		CoverImageURL: in.CoverImageURL,
		UpdatedAt:     time.Now().UTC(),
	})
}

// Delete removes an event and its registrations.
func (s *EventService) Delete(ctx context.Context, eventID string) error {
	if _, err := s.Get(ctx, eventID); err != nil {
		return err
	}
	return s.queries.DeleteEvent(ctx, eventID)
}

// RegistrationInput holds the fields of a registration request.
type RegistrationInput struct {
	Name  string
	Email string
	Phone string
}

// Register adds a registration to an event. Capacity 0 means unlimited.
// The registration code is the attendee's check-in credential.
func (s *EventService) Register(ctx context.Context, eventID string, in RegistrationInput) (store.EventRegistration, error) {
	if in.Email == "" {
		return store.EventRegistration{}, Validation("email", "email is required")
	}

	event, err := s.Get(ctx, eventID)
	if err != nil {
		return store.EventRegistration{}, err
	}

	if event.Capacity > 0 {
		count, err := s.queries.CountRegistrationsForEvent(ctx, eventID)
		if err != nil {
			return store.EventRegistration{}, err
		}
		if count >= event.Capacity {
			return store.EventRegistration{}, ErrCapacityFull
		}
	}

	for attempt := 0; attempt < 5; attempt++ {
		code, err := util.RandomHex(4)
		if err != nil {
			return store.EventRegistration{}, err
		}

		reg, err := s.queries.CreateEventRegistration(ctx, store.CreateEventRegistrationParams{
			EventID:          eventID,
			RegistrationCode: code,
			Name:             in.Name,
			Email:            in.Email,
			Phone:            in.Phone,
			CreatedAt:        time.Now().UTC(),
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				continue // code collision, try another
			}
			return store.EventRegistration{}, err
		}
		return reg, nil
	}
	return store.EventRegistration{}, fmt.Errorf("could not allocate registration code for event %s", eventID)
}

// Registrations returns all registrations for an event.
func (s *EventService) Registrations(ctx context.Context, eventID string) ([]store.EventRegistration, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.queries.ListRegistrationsForEvent(ctx, eventID)
}
