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

// BlogPostResponse represents a blog post in API responses.
type BlogPostResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Status        string     `json:"status"`
	Tags          []string   `json:"tags"`
	Author        string     `json:"author,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func blogPostToResponse(p store.BlogPost) BlogPostResponse {
	resp := BlogPostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		CoverImageURL: p.CoverImageURL,
		Status:        p.Status,
		Tags:          service.DecodeTags(p.Tags),
		Author:        p.Author,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	return resp
}

func blogPostsToResponses(posts []store.BlogPost) []BlogPostResponse {
	out := make([]BlogPostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, blogPostToResponse(p))
	}
	return out
}

// blogPostRequest is the request body for creating or updating a post.
type blogPostRequest struct {
	Title         string   `json:"title" validate:"required"`
	Slug          string   `json:"slug"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	CoverImageURL string   `json:"cover_image_url"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags          []string `json:"tags"`
	Author        string   `json:"author"`
}

func (req blogPostRequest) toInput() service.BlogPostInput {
	return service.BlogPostInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverImageURL,
		Status:        req.Status,
		Tags:          req.Tags,
		Author:        req.Author,
	}
}

// invalidateBlogCache drops every blog cache key a mutation can affect.
func (h *Handler) invalidateBlogCache(r *http.Request, slugs ...string) {
	keys := []string{cache.KeyBlogPosts, cache.KeyAdminBlogPosts}
	for _, slug := range slugs {
		keys = append(keys, cache.KeyBlogPost(slug))
	}
	cache.Invalidate(r.Context(), h.cache, keys...)
}

// ListPublishedPosts handles GET /api/blog. The list is served
// cache-aside with the default TTL.
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage, offset := parsePagination(r)

	// Only the unpaginated first page is cached; deep pages are rare
	// enough to always hit the database.
	cacheable := page == 1 && perPage == defaultPerPage
	if cacheable {
		if cached, ok := cache.GetJSON[Response](ctx, h.cache, cache.KeyBlogPosts); ok {
			WriteJSON(w, http.StatusOK, cached)
			return
		}
	}

	posts, total, err := h.blog.ListPublished(ctx, int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := Response{
		Data: blogPostsToResponses(posts),
		Meta: &Meta{Total: total, Page: page, PerPage: perPage},
	}
	if cacheable {
		cache.FillJSON(ctx, h.cache, cache.KeyBlogPosts, resp, 0)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetPublishedPost handles GET /api/blog/{slug}.
func (h *Handler) GetPublishedPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	key := cache.KeyBlogPost(slug)
	if cached, ok := cache.GetJSON[BlogPostResponse](ctx, h.cache, key); ok {
		WriteSuccess(w, cached, nil)
		return
	}

	post, err := h.blog.GetPublished(ctx, slug)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := blogPostToResponse(post)
	cache.FillJSON(ctx, h.cache, key, resp, 0)
	WriteSuccess(w, resp, nil)
}

// AdminListPosts handles GET /api/admin/blog. The admin list
// self-invalidates after filling the cache so the next admin read is
// always fresh; the cache only absorbs request bursts.
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage, offset := parsePagination(r)

	cacheable := page == 1 && perPage == defaultPerPage
	if cacheable {
		if cached, ok := cache.GetJSON[Response](ctx, h.cache, cache.KeyAdminBlogPosts); ok {
			cache.Invalidate(ctx, h.cache, cache.KeyAdminBlogPosts)
			WriteJSON(w, http.StatusOK, cached)
			return
		}
	}

	posts, total, err := h.blog.List(ctx, int64(perPage), offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := Response{
		Data: blogPostsToResponses(posts),
		Meta: &Meta{Total: total, Page: page, PerPage: perPage},
	}
	if cacheable {
		cache.FillJSON(ctx, h.cache, cache.KeyAdminBlogPosts, resp, 0)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// AdminGetPost handles GET /api/admin/blog/{id}.
func (h *Handler) AdminGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	post, err := h.blog.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, blogPostToResponse(post), nil)
}

// CreatePost handles POST /api/admin/blog.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req blogPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.blog.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.invalidateBlogCache(r, post.Slug)
	h.publish("blog", "created")
	WriteCreated(w, blogPostToResponse(post))
}

// UpdatePost handles PUT /api/admin/blog/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	var req blogPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// The slug can change on update; the old one has to leave the cache too.
	existing, err := h.blog.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	post, err := h.blog.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.invalidateBlogCache(r, existing.Slug, post.Slug)
	h.publish("blog", "updated")
	WriteSuccess(w, blogPostToResponse(post), nil)
}

// DeletePost handles DELETE /api/admin/blog/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	post, err := h.blog.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := h.blog.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.invalidateBlogCache(r, post.Slug)
	h.publish("blog", "deleted")
	WriteSuccess(w, map[string]string{"message": "Post deleted"}, nil)
}
