// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
	"github.com/olegiv/mms-go/internal/util"
)

// BlogService manages blog posts.
type BlogService struct {
	queries *store.Queries
}

// NewBlogService creates a blog service.
func NewBlogService(queries *store.Queries) *BlogService {
	return &BlogService{queries: queries}
}

// BlogPostInput holds the writable fields of a blog post.
type BlogPostInput struct {
	Title         string
	Slug          string // optional; generated from Title when empty
	Content       string
	Excerpt       string
	CoverImageURL string
	Status        string
	Tags          []string
	Author        string
}

// uniqueSlug returns base if free, otherwise base-1, base-2, ...
func (s *BlogService) uniqueSlug(ctx context.Context, base string, excludeID int64) (string, error) {
	slug := base
	for i := 1; ; i++ {
		var (
			taken bool
			err   error
		)
		if excludeID > 0 {
			taken, err = s.queries.BlogSlugExistsExcluding(ctx, store.BlogSlugExistsExcludingParams{Slug: slug, ID: excludeID})
		} else {
			taken, err = s.queries.BlogSlugExists(ctx, slug)
		}
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *BlogService) prepare(in BlogPostInput) (BlogPostInput, string, error) {
	if in.Title == "" {
		return in, "", Validation("title", "title is required")
	}
	if in.Status == "" {
		in.Status = model.PostStatusDraft
	}
	if !model.IsValidPostStatus(in.Status) {
		return in, "", Validation("status", "unknown status")
	}

	base := in.Slug
	if base == "" {
		base = util.Slugify(in.Title)
	}
	if !util.IsValidSlug(base) {
		return in, "", Validation("slug", "invalid slug")
	}

	if in.Tags == nil {
		in.Tags = []string{}
	}
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return in, "", err
	}
	return in, string(tags), nil
}

// Create creates a blog post. Slug collisions are resolved with a
// numeric suffix; the unique index catches the race where two creates
// pick the same suffix.
func (s *BlogService) Create(ctx context.Context, in BlogPostInput) (store.BlogPost, error) {
	in, tags, err := s.prepare(in)
	if err != nil {
		return store.BlogPost{}, err
	}

	base := in.Slug
	if base == "" {
		base = util.Slugify(in.Title)
	}
	slug, err := s.uniqueSlug(ctx, base, 0)
	if err != nil {
		return store.BlogPost{}, err
	}

	now := time.Now().UTC()
	var publishedAt sql.NullTime
	if in.Status == model.PostStatusPublished {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	post, err := s.queries.CreateBlogPost(ctx, store.CreateBlogPostParams{
		Title:         in.Title,
		Slug:          slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		CoverImageURL: in.CoverImageURL,
		Status:        in.Status,
		Tags:          tags,
		Author:        in.Author,
		PublishedAt:   publishedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.BlogPost{}, ErrDuplicate
		}
		return store.BlogPost{}, err
	}
	return post, nil
}

// Get returns a post by ID.
func (s *BlogService) Get(ctx context.Context, id int64) (store.BlogPost, error) {
	post, err := s.queries.GetBlogPostByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.BlogPost{}, ErrNotFound
	}
	return post, err
}

// GetPublished returns a published post by slug.
func (s *BlogService) GetPublished(ctx context.Context, slug string) (store.BlogPost, error) {
	post, err := s.queries.GetPublishedPostBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return store.BlogPost{}, ErrNotFound
	}
	return post, err
}

// List returns posts for the admin view (all statuses).
func (s *BlogService) List(ctx context.Context, limit, offset int64) ([]store.BlogPost, int64, error) {
	posts, err := s.queries.ListBlogPosts(ctx, store.ListBlogPostsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountBlogPosts(ctx)
	return posts, total, err
}

// ListPublished returns published posts for the public view.
func (s *BlogService) ListPublished(ctx context.Context, limit, offset int64) ([]store.BlogPost, int64, error) {
	posts, err := s.queries.ListPublishedPosts(ctx, store.ListBlogPostsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountPublishedPosts(ctx)
	return posts, total, err
}

// Update replaces a post's writable fields. Publishing a draft stamps
// PublishedAt once; re-saving an already published post keeps the
// original publication time.
func (s *BlogService) Update(ctx context.Context, id int64, in BlogPostInput) (store.BlogPost, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return store.BlogPost{}, err
	}

	in, tags, err := s.prepare(in)
	if err != nil {
		return store.BlogPost{}, err
	}

	base := in.Slug
	if base == "" {
		base = util.Slugify(in.Title)
	}
	slug, err := s.uniqueSlug(ctx, base, id)
	if err != nil {
		return store.BlogPost{}, err
	}

	now := time.Now().UTC()
	publishedAt := existing.PublishedAt
	switch {
	case in.Status == model.PostStatusPublished && !publishedAt.Valid:
		publishedAt = sql.NullTime{Time: now, Valid: true}
	case in.Status == model.PostStatusDraft:
		publishedAt = sql.NullTime{}
	}

	post, err := s.queries.UpdateBlogPost(ctx, store.UpdateBlogPostParams{
		ID:            id,
		Title:         in.Title,
		Slug:          slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		CoverImageURL: in.CoverImageURL,
		Status:        in.Status,
		Tags:          tags,
		Author:        in.Author,
		PublishedAt:   publishedAt,
		UpdatedAt:     now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.BlogPost{}, ErrDuplicate
		}
		return store.BlogPost{}, err
	}
	return post, nil
}

// Delete removes a post.
func (s *BlogService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.queries.DeleteBlogPost(ctx, id)
}

// DecodeTags converts a stored tags column back into a string slice.
func DecodeTags(tags string) []string {
	var out []string
	if err := json.Unmarshal([]byte(tags), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
