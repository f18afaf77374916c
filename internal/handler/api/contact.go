// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/mms-go/internal/cache"
	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// SubscriberResponse represents a subscriber in API responses.
type SubscriberResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func subscriberToResponse(s store.Subscriber) SubscriberResponse {
	return SubscriberResponse{ID: s.ID, Email: s.Email, Name: s.Name, CreatedAt: s.CreatedAt}
}

// subscribeRequest is the request body for the public subscribe endpoint.
type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// Subscribe handles POST /api/contact/subscribe. A duplicate email is a
// 400 rather than the usual 409: the public form treats it as an input
// problem, not a state conflict.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := h.subscribers.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			WriteBadRequest(w, "Email already subscribed", nil)
			return
		}
		h.writeServiceError(w, err)
		return
	}

	cache.Invalidate(r.Context(), h.cache, cache.KeySubscriberStats)
	h.publish("subscribers", "created")
	WriteCreated(w, subscriberToResponse(sub))
}

// AdminListSubscribers handles GET /api/admin/subscribers.
func (h *Handler) AdminListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscribers.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]SubscriberResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, subscriberToResponse(s))
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}

// AdminDeleteSubscriber handles DELETE /api/admin/subscribers/{id}.
func (h *Handler) AdminDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid subscriber ID", nil)
		return
	}

	if err := h.subscribers.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	cache.Invalidate(r.Context(), h.cache, cache.KeySubscriberStats)
	h.publish("subscribers", "deleted")
	WriteSuccess(w, map[string]string{"message": "Subscriber deleted"}, nil)
}

const statsMonths = 12

// SubscriberStats handles GET /api/admin/subscribers/stats. The
// aggregate is served cache-aside.
func (h *Handler) SubscriberStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := cache.GetJSON[service.SubscriberStats](ctx, h.cache, cache.KeySubscriberStats); ok {
		WriteSuccess(w, cached, nil)
		return
	}

	stats, err := h.subscribers.Stats(ctx, statsMonths)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	cache.FillJSON(ctx, h.cache, cache.KeySubscriberStats, stats, 0)
	WriteSuccess(w, stats, nil)
}

// InquiryResponse represents a contact inquiry in API responses.
type InquiryResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email"`
	Subject       string     `json:"subject,omitempty"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	AdminResponse string     `json:"admin_response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func inquiryToResponse(i store.ContactInquiry) InquiryResponse {
	resp := InquiryResponse{
		ID:            i.ID,
		Name:          i.Name,
		Email:         i.Email,
		Subject:       i.Subject,
		Message:       i.Message,
		Status:        i.Status,
		AdminResponse: i.AdminResponse,
		CreatedAt:     i.CreatedAt,
	}
	if i.RespondedAt.Valid {
		resp.RespondedAt = &i.RespondedAt.Time
	}
	return resp
}

// inquiryRequest is the request body for the public contact form.
type inquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// SubmitInquiry handles POST /api/contact.
func (h *Handler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inquiry, err := h.inquiries.Submit(r.Context(), service.InquiryInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("inquiries", "created")
	WriteCreated(w, inquiryToResponse(inquiry))
}

// AdminListInquiries handles GET /api/admin/inquiries.
func (h *Handler) AdminListInquiries(w http.ResponseWriter, r *http.Request) {
	page, perPage, offset := parsePagination(r)
	status := r.URL.Query().Get("status")

	inquiries, total, err := h.inquiries.List(r.Context(), status, int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]InquiryResponse, 0, len(inquiries))
	for _, i := range inquiries {
		out = append(out, inquiryToResponse(i))
	}
	WriteSuccess(w, out, &Meta{Total: total, Page: page, PerPage: perPage})
}

// respondRequest is the request body for responding to an inquiry.
type respondRequest struct {
	Response string `json:"response" validate:"required"`
}

// RespondToInquiry handles POST /api/admin/inquiries/{id}/respond.
func (h *Handler) RespondToInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid inquiry ID", nil)
		return
	}

	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inquiry, err := h.inquiries.Respond(r.Context(), id, req.Response)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("inquiries", "responded")
	WriteSuccess(w, inquiryToResponse(inquiry), nil)
}

// CloseInquiry handles POST /api/admin/inquiries/{id}/close.
func (h *Handler) CloseInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid inquiry ID", nil)
		return
	}

	if err := h.inquiries.Close(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("inquiries", "closed")
	WriteSuccess(w, map[string]string{"message": "Inquiry closed"}, nil)
}

// DeleteInquiry handles DELETE /api/admin/inquiries/{id}.
func (h *Handler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid inquiry ID", nil)
		return
	}

	if err := h.inquiries.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("inquiries", "deleted")
	WriteSuccess(w, map[string]string{"message": "Inquiry deleted"}, nil)
}
