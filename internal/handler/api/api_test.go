// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mms-go/internal/cache"
	"github.com/olegiv/mms-go/internal/mail"
	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// testEnv wires a handler with a real SQLite database and a memory
// cache behind a chi router.
type testEnv struct {
	handler     *Handler
	router      chi.Router
	blog        *service.BlogService
	events      *service.EventService
	subscribers *service.SubscriberService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "mms-api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	_ = f.Close()

	db, err := store.NewDB(f.Name())
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	queries := store.New(db)
	appCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = appCache.Close() })

	blogService := service.NewBlogService(queries)
	eventService := service.NewEventService(queries)
	subscriberService := service.NewSubscriberService(queries)

	h := NewHandler(Deps{
		Blog:        blogService,
		Events:      eventService,
		Subscribers: subscriberService,
		Inquiries:   service.NewInquiryService(queries, mail.LogMailer{}),
		Enrollments: service.NewEnrollmentService(queries),
		Users:       service.NewUserService(queries),
		Admins:      service.NewAdminService(queries),
		Newsletters: service.NewNewsletterService(queries, mail.LogMailer{}, nil),
		Cache:       appCache,
	})

	r := chi.NewRouter()
	r.Get("/api/blog", h.ListPublishedPosts)
	r.Get("/api/blog/{slug}", h.GetPublishedPost)
	r.Post("/api/contact", h.SubmitInquiry)
	r.Post("/api/contact/subscribe", h.Subscribe)
	r.Post("/api/events/{eventID}/register", h.RegisterForEvent)
	r.Get("/api/admin/blog", h.AdminListPosts)
	r.Post("/api/admin/blog", h.CreatePost)
	r.Get("/api/admin/subscribers/export", h.ExportSubscribers)

	return &testEnv{
		handler:     h,
		router:      r,
		blog:        blogService,
		events:      eventService,
		subscribers: subscriberService,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// postList matches the list response shape for decoding in tests.
type postList struct {
	Data []BlogPostResponse `json:"data"`
	Meta *Meta              `json:"meta"`
}

func decodePostList(t *testing.T, w *httptest.ResponseRecorder) postList {
	t.Helper()
	var resp postList
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling list response: %v", err)
	}
	return resp
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, want string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling error response: %v", err)
	}
	if resp.Error.Code != want {
		t.Errorf("error code = %q, want %q", resp.Error.Code, want)
	}
	return resp
}

func TestSubscribeDuplicateIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"email": "member@example.org", "name": "Member"}

	assertStatus(t, env.do(t, http.MethodPost, "/api/contact/subscribe", body), http.StatusCreated)

	w := env.do(t, http.MethodPost, "/api/contact/subscribe", body)
	assertStatus(t, w, http.StatusBadRequest)
	resp := assertErrorCode(t, w, "bad_request")
	if resp.Error.Message != "Email already subscribed" {
		t.Errorf("message = %q, want %q", resp.Error.Message, "Email already subscribed")
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/contact/subscribe", map[string]string{"email": "not-an-email"})
	assertStatus(t, w, http.StatusBadRequest)
	resp := assertErrorCode(t, w, "bad_request")
	if _, ok := resp.Error.Details["Email"]; !ok {
		t.Errorf("expected a validation detail for Email, got %v", resp.Error.Details)
	}
}

func TestSubmitInquiryRequiresMessage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/contact", map[string]string{"email": "asker@example.org"})
	assertStatus(t, w, http.StatusBadRequest)
	assertErrorCode(t, w, "bad_request")
}

func TestPublicBlogListServesFromCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.blog.Create(ctx, service.BlogPostInput{Title: "First", Status: "published"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/blog", nil)
	assertStatus(t, w, http.StatusOK)
	if got := len(decodePostList(t, w).Data); got != 1 {
		t.Fatalf("posts = %d, want 1", got)
	}

	// A write that bypasses the handlers is invisible until the TTL
	// expires: the list is now cached.
	if _, err := env.blog.Create(ctx, service.BlogPostInput{Title: "Second", Status: "published"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	w = env.do(t, http.MethodGet, "/api/blog", nil)
	if got := len(decodePostList(t, w).Data); got != 1 {
		t.Fatalf("posts after direct write = %d, want 1 (cached)", got)
	}

	// A mutation through the handlers invalidates the cached list.
	assertStatus(t, env.do(t, http.MethodPost, "/api/admin/blog", map[string]any{
		"title": "Third", "status": "published",
	}), http.StatusCreated)

	w = env.do(t, http.MethodGet, "/api/blog", nil)
	if got := len(decodePostList(t, w).Data); got != 3 {
		t.Fatalf("posts after handler write = %d, want 3", got)
	}
}

func TestAdminBlogListSelfInvalidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.blog.Create(ctx, service.BlogPostInput{Title: "Only post"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	// Miss: fills the cache.
	assertStatus(t, env.do(t, http.MethodGet, "/api/admin/blog", nil), http.StatusOK)

	if _, err := env.blog.Create(ctx, service.BlogPostInput{Title: "Added behind the cache"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	// Hit: serves the stale entry once, then drops the key.
	w := env.do(t, http.MethodGet, "/api/admin/blog", nil)
	if got := len(decodePostList(t, w).Data); got != 1 {
		t.Fatalf("posts on cache hit = %d, want 1 (stale)", got)
	}

	// The self-invalidation makes the next read fresh.
	w = env.do(t, http.MethodGet, "/api/admin/blog", nil)
	if got := len(decodePostList(t, w).Data); got != 2 {
		t.Fatalf("posts after self-invalidation = %d, want 2", got)
	}
}

func TestGetPublishedPostNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/blog/no-such-post", nil)
	assertStatus(t, w, http.StatusNotFound)
	assertErrorCode(t, w, "not_found")
}

func TestGetPublishedPostHidesDrafts(t *testing.T) {
	env := newTestEnv(t)

	post, err := env.blog.Create(context.Background(), service.BlogPostInput{Title: "Draft post"})
	if err != nil {
		t.Fatalf("creating post: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/blog/"+post.Slug, nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestRegisterForEventCapacityFull(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now().UTC()
	event, err := env.events.Create(context.Background(), service.EventInput{
		Title:     "Members Assembly",
		EventType: "physical",
		Venue:     "Main hall",
		StartTime: now.Add(24 * time.Hour),
		EndTime:   now.Add(26 * time.Hour),
		Capacity:  1,
	})
	if err != nil {
		t.Fatalf("creating event: %v", err)
	}

	path := "/api/events/" + event.EventID + "/register"
	assertStatus(t, env.do(t, http.MethodPost, path, map[string]string{"email": "first@example.org"}), http.StatusCreated)

	w := env.do(t, http.MethodPost, path, map[string]string{"email": "second@example.org"})
	assertStatus(t, w, http.StatusConflict)
	assertErrorCode(t, w, "conflict")
}

func TestExportSubscribersCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.org", "b@example.org"} {
		if _, err := env.subscribers.Subscribe(ctx, email, ""); err != nil {
			t.Fatalf("subscribing %s: %v", email, err)
		}
	}

	w := env.do(t, http.MethodGet, "/api/admin/subscribers/export", nil)
	assertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want an attachment", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "email,name,subscribed_at" {
		t.Errorf("csv header = %q", lines[0])
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantOffset  int64
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit page", "page=3", 3, 20, 40},
		{"custom per_page", "page=2&per_page=50", 2, 50, 50},
		{"per_page capped", "per_page=500", 1, 100, 0},
		{"garbage ignored", "page=x&per_page=-1", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			page, perPage, offset := parsePagination(r)
			if page != tt.wantPage {
				t.Errorf("page = %d, want %d", page, tt.wantPage)
			}
			if perPage != tt.wantPerPage {
				t.Errorf("perPage = %d, want %d", perPage, tt.wantPerPage)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}

func TestWriteServiceErrorMappings(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"duplicate", service.ErrDuplicate, http.StatusConflict},
		{"conflict", service.ErrConflict, http.StatusConflict},
		{"capacity", service.ErrCapacityFull, http.StatusConflict},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation", service.Validation("title", "title is required"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.handler.writeServiceError(w, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
