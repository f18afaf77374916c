// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/mms-go/internal/mail"
	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
)

// InquiryService manages contact-form inquiries.
type InquiryService struct {
	queries *store.Queries
	mailer  mail.Mailer
}

// NewInquiryService creates an inquiry service.
func NewInquiryService(queries *store.Queries, mailer mail.Mailer) *InquiryService {
	return &InquiryService{queries: queries, mailer: mailer}
}

// InquiryInput holds the fields of a contact-form submission.
type InquiryInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Submit records a new pending inquiry.
func (s *InquiryService) Submit(ctx context.Context, in InquiryInput) (store.ContactInquiry, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return store.ContactInquiry{}, Validation("email", "a valid email is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return store.ContactInquiry{}, Validation("message", "message is required")
	}

	return s.queries.CreateInquiry(ctx, store.CreateInquiryParams{
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	})
}

// Get returns an inquiry by ID.
func (s *InquiryService) Get(ctx context.Context, id int64) (store.ContactInquiry, error) {
	inquiry, err := s.queries.GetInquiryByID(ctx, id)
	return inquiry, mapNoRows(err)
}

// List returns inquiries with the total count, optionally filtered by status.
func (s *InquiryService) List(ctx context.Context, status string, limit, offset int64) ([]store.ContactInquiry, int64, error) {
	if status != "" && status != model.InquiryStatusPending &&
		status != model.InquiryStatusResponded && status != model.InquiryStatusClosed {
		return nil, 0, Validation("status", "unknown status")
	}
	inquiries, err := s.queries.ListInquiries(ctx, store.ListInquiriesParams{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountInquiries(ctx, status)
	return inquiries, total, err
}

// Respond records an admin response on a pending inquiry and emails it
// to the inquirer. Only pending inquiries can be responded to; the
// status predicate in the update makes concurrent responses settle on
// exactly one winner. A mail failure is logged but does not undo the
// status change.
func (s *InquiryService) Respond(ctx context.Context, id int64, response string) (store.ContactInquiry, error) {
	if strings.TrimSpace(response) == "" {
		return store.ContactInquiry{}, Validation("response", "response is required")
	}

	inquiry, err := s.Get(ctx, id)
	if err != nil {
		return store.ContactInquiry{}, err
	}

	affected, err := s.queries.RespondToInquiry(ctx, store.RespondToInquiryParams{
		ID:            id,
		AdminResponse: response,
		RespondedAt:   time.Now().UTC(),
	})
	if err != nil {
		return store.ContactInquiry{}, err
	}
	if affected == 0 {
		return store.ContactInquiry{}, ErrConflict
	}

	msg := mail.InquiryResponseEmail(inquiry.Email, inquiry.Subject, response)
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("sending inquiry response email", "inquiry_id", id, "error", err)
	}

	return s.Get(ctx, id)
}

// Close marks an inquiry closed.
func (s *InquiryService) Close(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.queries.CloseInquiry(ctx, id)
}

// Delete removes an inquiry.
func (s *InquiryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.queries.DeleteInquiry(ctx, id)
}
