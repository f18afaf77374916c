// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"time"

	"github.com/olegiv/mms-go/internal/store"
)

// SubscriberService manages newsletter subscribers.
type SubscriberService struct {
	queries *store.Queries
}

// NewSubscriberService creates a subscriber service.
func NewSubscriberService(queries *store.Queries) *SubscriberService {
	return &SubscriberService{queries: queries}
}

// Subscribe adds a subscriber. Duplicate emails are rejected by the
// unique index, which makes the check atomic under concurrent requests.
func (s *SubscriberService) Subscribe(ctx context.Context, email, name string) (store.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return store.Subscriber{}, Validation("email", "a valid email is required")
	}

	sub, err := s.queries.CreateSubscriber(ctx, store.CreateSubscriberParams{
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.Subscriber{}, ErrDuplicate
		}
		return store.Subscriber{}, err
	}
	return sub, nil
}

// List returns all subscribers, newest first.
func (s *SubscriberService) List(ctx context.Context) ([]store.Subscriber, error) {
	return s.queries.ListSubscribers(ctx)
}

// Delete removes a subscriber.
func (s *SubscriberService) Delete(ctx context.Context, id int64) error {
	if _, err := s.queries.GetSubscriberByID(ctx, id); err != nil {
		return mapNoRows(err)
	}
	return s.queries.DeleteSubscriber(ctx, id)
}

// SubscriberStats aggregates subscriber counts for the dashboard.
type SubscriberStats struct {
	Total   int64                `json:"total"`
	Monthly []store.MonthlyCount `json:"monthly"`
}

// Stats returns the total subscriber count plus per-month signup
// counts for the last months.
func (s *SubscriberService) Stats(ctx context.Context, months int64) (SubscriberStats, error) {
	total, err := s.queries.CountSubscribers(ctx)
	if err != nil {
		return SubscriberStats{}, err
	}
	monthly, err := s.queries.CountSubscribersByMonth(ctx, months)
	if err != nil {
		return SubscriberStats{}, err
	}
	if monthly == nil {
		monthly = []store.MonthlyCount{}
	}
	return SubscriberStats{Total: total, Monthly: monthly}, nil
}
