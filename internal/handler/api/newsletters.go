// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// NewsletterResponse represents a newsletter in API responses.
type NewsletterResponse struct {
	ID          int64      `json:"id"`
	Subject     string     `json:"subject"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"content_html"`
	Recipients  int64      `json:"recipients"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	QueuedAt    *time.Time `json:"queued_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newsletterToResponse(n store.Newsletter) NewsletterResponse {
	resp := NewsletterResponse{
		ID:          n.ID,
		Subject:     n.Subject,
		Content:     n.Content,
		ContentHTML: n.ContentHTML,
		Recipients:  n.Recipients,
		Status:      n.Status,
		Error:       n.Error,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	if n.QueuedAt.Valid {
		resp.QueuedAt = &n.QueuedAt.Time
	}
	if n.SentAt.Valid {
		resp.SentAt = &n.SentAt.Time
	}
	return resp
}

// newsletterRequest is the request body for creating or editing a draft.
type newsletterRequest struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CreateNewsletter handles POST /api/admin/newsletters.
func (h *Handler) CreateNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.newsletters.CreateDraft(r.Context(), service.NewsletterInput{
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("newsletters", "created")
	WriteCreated(w, newsletterToResponse(n))
}

// ListNewsletters handles GET /api/admin/newsletters.
func (h *Handler) ListNewsletters(w http.ResponseWriter, r *http.Request) {
	page, perPage, offset := parsePagination(r)

	newsletters, total, err := h.newsletters.List(r.Context(), int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]NewsletterResponse, 0, len(newsletters))
	for _, n := range newsletters {
		out = append(out, newsletterToResponse(n))
	}
	WriteSuccess(w, out, &Meta{Total: total, Page: page, PerPage: perPage})
}

// GetNewsletter handles GET /api/admin/newsletters/{id}.
func (h *Handler) GetNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid newsletter ID", nil)
		return
	}

	n, err := h.newsletters.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, newsletterToResponse(n), nil)
}

// UpdateNewsletter handles PUT /api/admin/newsletters/{id}. Only drafts
// are editable.
func (h *Handler) UpdateNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid newsletter ID", nil)
		return
	}

	var req newsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.newsletters.UpdateDraft(r.Context(), id, service.NewsletterInput{
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("newsletters", "updated")
	WriteSuccess(w, newsletterToResponse(n), nil)
}

// QueueNewsletter handles POST /api/admin/newsletters/{id}/queue. The
// scheduler's next drain tick picks the newsletter up for delivery.
func (h *Handler) QueueNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid newsletter ID", nil)
		return
	}

	n, err := h.newsletters.Queue(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("newsletters", "queued")
	WriteSuccess(w, newsletterToResponse(n), nil)
}

// DeleteNewsletter handles DELETE /api/admin/newsletters/{id}.
func (h *Handler) DeleteNewsletter(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid newsletter ID", nil)
		return
	}

	if err := h.newsletters.DeleteDraft(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("newsletters", "deleted")
	WriteSuccess(w, map[string]string{"message": "Newsletter deleted"}, nil)
}
