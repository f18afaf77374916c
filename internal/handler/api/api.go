// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers for the admin backend.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/olegiv/mms-go/internal/cache"
	"github.com/olegiv/mms-go/internal/realtime"
	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/upload"
	"github.com/olegiv/mms-go/internal/version"
)

// validate checks request struct tags. One instance is safe for
// concurrent use.
var validate = validator.New()

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	blog        *service.BlogService
	events      *service.EventService
	subscribers *service.SubscriberService
	inquiries   *service.InquiryService
	enrollments *service.EnrollmentService
	users       *service.UserService
	admins      *service.AdminService
	auth        *service.AuthService
	newsletters *service.NewsletterService

	cache    cache.Cache // nil when caching is disabled
	hub      *realtime.Hub
	uploader *upload.Uploader
	logger   *slog.Logger
	version  version.Info
}

// Deps bundles everything the handlers need.
type Deps struct {
	Blog        *service.BlogService
	Events      *service.EventService
	Subscribers *service.SubscriberService
	Inquiries   *service.InquiryService
	Enrollments *service.EnrollmentService
	Users       *service.UserService
	Admins      *service.AdminService
	Auth        *service.AuthService
	Newsletters *service.NewsletterService

	Cache    cache.Cache
	Hub      *realtime.Hub
	Uploader *upload.Uploader
	Logger   *slog.Logger
	Version  version.Info
}

// NewHandler creates the API handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		blog:        d.Blog,
		events:      d.Events,
		subscribers: d.Subscribers,
		inquiries:   d.Inquiries,
		enrollments: d.Enrollments,
		users:       d.Users,
		admins:      d.Admins,
		auth:        d.Auth,
		newsletters: d.Newsletters,
		cache:       d.Cache,
		hub:         d.Hub,
		uploader:    d.Uploader,
		logger:      d.Logger,
		version:     d.Version,
	}
}

// publish pushes a dashboard live-update for a mutation. Safe with a
// nil hub (tests that don't care about broadcasts).
func (h *Handler) publish(entity, action string) {
	if h.hub != nil {
		h.hub.Publish(entity, action)
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError translates a service-layer error into a response.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteBadRequest(w, "Validation failed", map[string]string{verr.Field: verr.Message})
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, "Not found")
	case errors.Is(err, service.ErrDuplicate):
		WriteConflict(w, "Already exists")
	case errors.Is(err, service.ErrConflict):
		WriteConflict(w, "Operation not allowed in the current state")
	case errors.Is(err, service.ErrCapacityFull):
		WriteConflict(w, "Event is full")
	case errors.Is(err, service.ErrLastSuperadmin):
		WriteConflict(w, "Cannot remove the last superadmin")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, "Invalid credentials")
	default:
		h.logger.Error("request failed", "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON decodes and validates a request body. Returns false with
// the response already written on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				details[fe.Field()] = "failed validation on '" + fe.Tag() + "'"
			}
			WriteBadRequest(w, "Validation failed", details)
			return false
		}
		WriteBadRequest(w, "Validation failed", nil)
		return false
	}
	return true
}

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parsePagination reads page/per_page query parameters and returns the
// page, per-page, and offset values.
func parsePagination(r *http.Request) (page, perPage int, offset int64) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	perPage = defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
	}
	return page, perPage, int64((page - 1) * perPage)
}

// HealthResponse contains service health information.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, HealthResponse{Status: "ok", Version: h.version.Version}, nil)
}
