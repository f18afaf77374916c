// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// BlogPost is a persisted blog post row. Tags is a JSON-encoded string array.
type BlogPost struct {
	ID            int64
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	CoverImageURL string
	Status        string
	Tags          string
	Author        string
	PublishedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const blogPostColumns = `id, title, slug, content, excerpt, cover_image_url, status, tags, author, published_at, created_at, updated_at`

func scanBlogPost(row interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImageURL,
		&p.Status, &p.Tags, &p.Author, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateBlogPostParams holds the fields for creating a blog post.
type CreateBlogPostParams struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	CoverImageURL string
	Status        string
	Tags          string
	Author        string
	PublishedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateBlogPost inserts a blog post and returns the created row.
func (q *Queries) CreateBlogPost(ctx context.Context, arg CreateBlogPostParams) (BlogPost, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO blog_posts (title, slug, content, excerpt, cover_image_url, status, tags, author, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.CoverImageURL,
		arg.Status, arg.Tags, arg.Author, arg.PublishedAt, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return BlogPost{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return BlogPost{}, err
	}
	return q.GetBlogPostByID(ctx, id)
}

// GetBlogPostByID returns a blog post by primary key.
func (q *Queries) GetBlogPostByID(ctx context.Context, id int64) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts WHERE id = ?`, id)
	return scanBlogPost(row)
}

// GetBlogPostBySlug returns a blog post by slug regardless of status.
func (q *Queries) GetBlogPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts WHERE slug = ?`, slug)
	return scanBlogPost(row)
}

// GetPublishedPostBySlug returns a published blog post by slug.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts WHERE slug = ? AND status = 'published'`, slug)
	return scanBlogPost(row)
}

// ListBlogPostsParams holds pagination for listing blog posts.
type ListBlogPostsParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) listPosts(ctx context.Context, query string, args ...any) ([]BlogPost, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListBlogPosts returns all blog posts, newest first.
func (q *Queries) ListBlogPosts(ctx context.Context, arg ListBlogPostsParams) ([]BlogPost, error) {
	return q.listPosts(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

// ListPublishedPosts returns published blog posts, newest first.
func (q *Queries) ListPublishedPosts(ctx context.Context, arg ListBlogPostsParams) ([]BlogPost, error) {
	return q.listPosts(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts WHERE status = 'published' ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

// CountBlogPosts returns the total number of blog posts.
func (q *Queries) CountBlogPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&n)
	return n, err
}

// CountPublishedPosts returns the number of published blog posts.
func (q *Queries) CountPublishedPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts WHERE status = 'published'`).Scan(&n)
	return n, err
}

// BlogSlugExists reports whether a blog post with the given slug exists.
func (q *Queries) BlogSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

// BlogSlugExistsExcludingParams holds arguments for BlogSlugExistsExcluding.
type BlogSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

// BlogSlugExistsExcluding reports whether another post already uses the slug.
func (q *Queries) BlogSlugExistsExcluding(ctx context.Context, arg BlogSlugExistsExcludingParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blog_posts WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n > 0, err
}

// UpdateBlogPostParams holds the full set of updatable blog post fields.
type UpdateBlogPostParams struct {
	ID            int64
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	CoverImageURL string
	Status        string
	Tags          string
	Author        string
	PublishedAt   sql.NullTime
	UpdatedAt     time.Time
}

// UpdateBlogPost updates a blog post and returns the updated row.
func (q *Queries) UpdateBlogPost(ctx context.Context, arg UpdateBlogPostParams) (BlogPost, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE blog_posts
		SET title = ?, slug = ?, content = ?, excerpt = ?, cover_image_url = ?,
		    status = ?, tags = ?, author = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.CoverImageURL,
		arg.Status, arg.Tags, arg.Author, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	if err != nil {
		return BlogPost{}, err
	}
	return q.GetBlogPostByID(ctx, arg.ID)
}

// DeleteBlogPost removes a blog post.
func (q *Queries) DeleteBlogPost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	return err
}
