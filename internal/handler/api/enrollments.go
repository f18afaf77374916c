// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// EnrollmentResponse represents an enrollment in API responses.
type EnrollmentResponse struct {
	ID           int64     `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	Course       string    `json:"course"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func enrollmentToResponse(e store.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:           e.ID,
		EnrollmentID: e.EnrollmentID,
		Course:       e.Course,
		Name:         e.Name,
		Email:        e.Email,
		Phone:        e.Phone,
		Message:      e.Message,
		CreatedAt:    e.CreatedAt,
	}
}

// enrollmentRequest is the request body for submitting an enrollment.
type enrollmentRequest struct {
	Course  string `json:"course" validate:"required"`
	Name    string `json:"name"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// CreateEnrollment handles POST /api/enrollments.
func (h *Handler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req enrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	enrollment, err := h.enrollments.Create(r.Context(), service.EnrollmentInput{
		Course:  req.Course,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("enrollments", "created")
	WriteCreated(w, enrollmentToResponse(enrollment))
}

// AdminListEnrollments handles GET /api/admin/enrollments.
func (h *Handler) AdminListEnrollments(w http.ResponseWriter, r *http.Request) {
	page, perPage, offset := parsePagination(r)
	course := r.URL.Query().Get("course")

	enrollments, total, err := h.enrollments.List(r.Context(), course, int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, enrollmentToResponse(e))
	}
	WriteSuccess(w, out, &Meta{Total: total, Page: page, PerPage: perPage})
}

// AdminGetEnrollment handles GET /api/admin/enrollments/{enrollmentID}.
func (h *Handler) AdminGetEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.enrollments.Get(r.Context(), chi.URLParam(r, "enrollmentID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, enrollmentToResponse(enrollment), nil)
}

// AdminDeleteEnrollment handles DELETE /api/admin/enrollments/{enrollmentID}.
func (h *Handler) AdminDeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	if err := h.enrollments.Delete(r.Context(), chi.URLParam(r, "enrollmentID")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("enrollments", "deleted")
	WriteSuccess(w, map[string]string{"message": "Enrollment deleted"}, nil)
}

// EnrollmentStats handles GET /api/admin/enrollments/stats.
func (h *Handler) EnrollmentStats(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.enrollments.MonthlyCounts(r.Context(), statsMonths)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"monthly": monthly}, nil)
}
