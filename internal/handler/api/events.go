// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mms-go/internal/cache"
	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID            int64     `json:"id"`
	EventID       string    `json:"event_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	EventType     string    `json:"event_type"`
	Venue         string    `json:"venue,omitempty"`
	Address       string    `json:"address,omitempty"`
	MeetingURL    string    `json:"meeting_url,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Capacity      int64     `json:"capacity"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func eventToResponse(e store.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		EventID:       e.EventID,
		Title:         e.Title,
		Description:   e.Description,
		EventType:     e.EventType,
		Venue:         e.Venue,
		Address:       e.Address,
		MeetingURL:    e.MeetingURL,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Capacity:      e.Capacity,
		CoverImageURL: e.CoverImageURL,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func eventsToResponses(events []store.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventToResponse(e))
	}
	return out
}

// RegistrationResponse represents an event registration in API responses.
type RegistrationResponse struct {
	ID               int64     `json:"id"`
	EventID          string    `json:"event_id"`
	RegistrationCode string    `json:"registration_code"`
	Name             string    `json:"name,omitempty"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func registrationToResponse(reg store.EventRegistration) RegistrationResponse {
	return RegistrationResponse{
		ID:               reg.ID,
		EventID:          reg.EventID,
		RegistrationCode: reg.RegistrationCode,
		Name:             reg.Name,
		Email:            reg.Email,
		Phone:            reg.Phone,
		CreatedAt:        reg.CreatedAt,
	}
}

// eventRequest is the request body for creating or updating an event.
type eventRequest struct {
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description"`
	EventType     string    `json:"event_type" validate:"required,oneof=physical virtual"`
	Venue         string    `json:"venue"`
	Address       string    `json:"address"`
	MeetingURL    string    `json:"meeting_url" validate:"omitempty,url"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Capacity      int64     `json:"capacity" validate:"gte=0"`
	CoverImageURL string    `json:"cover_image_url"`
}

func (req eventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title:         req.Title,
		Description:   req.Description,
		EventType:     req.EventType,
		Venue:         req.Venue,
		Address:       req.Address,
		MeetingURL:    req.MeetingURL,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Capacity:      req.Capacity,
		CoverImageURL: req.CoverImageURL,
	}
}

func (h *Handler) invalidateEventCache(r *http.Request, eventIDs ...string) {
	keys := []string{cache.KeyEventsList, cache.KeyAdminEventsList}
	for _, id := range eventIDs {
		keys = append(keys, cache.KeyEvent(id))
	}
	cache.Invalidate(r.Context(), h.cache, keys...)
}

// ListEvents handles GET /api/events. Served cache-aside.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage, offset := parsePagination(r)

	cacheable := page == 1 && perPage == defaultPerPage
	if cacheable {
		if cached, ok := cache.GetJSON[Response](ctx, h.cache, cache.KeyEventsList); ok {
			WriteJSON(w, http.StatusOK, cached)
			return
		}
	}

	events, total, err := h.events.List(ctx, int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := Response{
		Data: eventsToResponses(events),
		Meta: &Meta{Total: total, Page: page, PerPage: perPage},
	}
	if cacheable {
		cache.FillJSON(ctx, h.cache, cache.KeyEventsList, resp, 0)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetEvent handles GET /api/events/{eventID}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "eventID")

	key := cache.KeyEvent(eventID)
	if cached, ok := cache.GetJSON[EventResponse](ctx, h.cache, key); ok {
		WriteSuccess(w, cached, nil)
		return
	}

	event, err := h.events.Get(ctx, eventID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := eventToResponse(event)
	cache.FillJSON(ctx, h.cache, key, resp, 0)
	WriteSuccess(w, resp, nil)
}

// CreateEvent handles POST /api/admin/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.events.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.invalidateEventCache(r, event.EventID)
	h.publish("events", "created")
	WriteCreated(w, eventToResponse(event))
}

// UpdateEvent handles PUT /api/admin/events/{eventID}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.events.Update(r.Context(), eventID, req.toInput())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.invalidateEventCache(r, eventID)
	h.publish("events", "updated")
	WriteSuccess(w, eventToResponse(event), nil)
}

// DeleteEvent handles DELETE /api/admin/events/{eventID}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := h.events.Delete(r.Context(), eventID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.invalidateEventCache(r, eventID)
	h.publish("events", "deleted")
	WriteSuccess(w, map[string]string{"message": "Event deleted"}, nil)
}

// registerRequest is the request body for registering for an event.
type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// RegisterForEvent handles POST /api/events/{eventID}/register.
func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reg, err := h.events.Register(r.Context(), eventID, service.RegistrationInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.publish("events", "registered")
	WriteCreated(w, registrationToResponse(reg))
}

// ListRegistrations handles GET /api/admin/events/{eventID}/registrations.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	regs, err := h.events.Registrations(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, registrationToResponse(reg))
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}
