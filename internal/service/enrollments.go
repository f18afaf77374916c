// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/mms-go/internal/store"
)

// EnrollmentService manages course enrollments.
type EnrollmentService struct {
	queries *store.Queries
}

// NewEnrollmentService creates an enrollment service.
func NewEnrollmentService(queries *store.Queries) *EnrollmentService {
	return &EnrollmentService{queries: queries}
}

// EnrollmentInput holds the fields of an enrollment request.
type EnrollmentInput struct {
	Course  string
	Name    string
	Email   string
	Phone   string
	Message string
}

// Create records an enrollment attempt. Attempts are never deduplicated:
// each submission is its own row with its own public identifier.
func (s *EnrollmentService) Create(ctx context.Context, in EnrollmentInput) (store.Enrollment, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return store.Enrollment{}, Validation("email", "a valid email is required")
	}
	if strings.TrimSpace(in.Course) == "" {
		return store.Enrollment{}, Validation("course", "course is required")
	}

	return s.queries.CreateEnrollment(ctx, store.CreateEnrollmentParams{
		EnrollmentID: uuid.NewString(),
		Course:       strings.TrimSpace(in.Course),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		Message:      in.Message,
		CreatedAt:    time.Now().UTC(),
	})
}

// Get returns an enrollment by its public identifier.
func (s *EnrollmentService) Get(ctx context.Context, enrollmentID string) (store.Enrollment, error) {
	enrollment, err := s.queries.GetEnrollmentByEnrollmentID(ctx, enrollmentID)
	return enrollment, mapNoRows(err)
}

// List returns enrollments with the total count, optionally filtered by course.
func (s *EnrollmentService) List(ctx context.Context, course string, limit, offset int64) ([]store.Enrollment, int64, error) {
	enrollments, err := s.queries.ListEnrollments(ctx, store.ListEnrollmentsParams{Course: course, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountEnrollments(ctx, course)
	return enrollments, total, err
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, enrollmentID string) error {
	if _, err := s.Get(ctx, enrollmentID); err != nil {
		return err
	}
	return s.queries.DeleteEnrollment(ctx, enrollmentID)
}

// MonthlyCounts returns per-month enrollment counts for the last months.
func (s *EnrollmentService) MonthlyCounts(ctx context.Context, months int64) ([]store.MonthlyCount, error) {
	counts, err := s.queries.CountEnrollmentsByMonth(ctx, months)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []store.MonthlyCount{}
	}
	return counts, nil
}
