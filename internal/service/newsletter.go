// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegiv/mms-go/internal/mail"
	"github.com/olegiv/mms-go/internal/model"
	"github.com/olegiv/mms-go/internal/store"
)

const defaultSendWorkers = 3

// NewsletterService manages newsletter drafts and delivery. Delivery is
// pull-based: Queue only flips the status, and SendQueued (run from the
// scheduler) drains everything in the queued state.
type NewsletterService struct {
	queries *store.Queries
	mailer  mail.Mailer
	logger  *slog.Logger
	workers int
}

// NewNewsletterService creates a newsletter service.
func NewNewsletterService(queries *store.Queries, mailer mail.Mailer, logger *slog.Logger) *NewsletterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsletterService{
		queries: queries,
		mailer:  mailer,
		logger:  logger,
		workers: defaultSendWorkers,
	}
}

// NewsletterInput holds the writable fields of a newsletter draft.
type NewsletterInput struct {
	Subject string
	Content string // markdown source
}

func (s *NewsletterService) render(in NewsletterInput) (NewsletterInput, string, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return in, "", Validation("subject", "subject is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return in, "", Validation("content", "content is required")
	}
	html, err := mail.RenderMarkdown(in.Content)
	if err != nil {
		return in, "", err
	}
	return in, html, nil
}

// CreateDraft creates a newsletter draft, rendering the markdown body
// to sanitized HTML at write time.
func (s *NewsletterService) CreateDraft(ctx context.Context, in NewsletterInput) (store.Newsletter, error) {
	in, html, err := s.render(in)
	if err != nil {
		return store.Newsletter{}, err
	}

	now := time.Now().UTC()
	return s.queries.CreateNewsletter(ctx, store.CreateNewsletterParams{
		Subject:     in.Subject,
		Content:     in.Content,
		ContentHTML: html,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Get returns a newsletter by ID.
func (s *NewsletterService) Get(ctx context.Context, id int64) (store.Newsletter, error) {
	n, err := s.queries.GetNewsletterByID(ctx, id)
	return n, mapNoRows(err)
}

// List returns newsletters with the total count.
func (s *NewsletterService) List(ctx context.Context, limit, offset int64) ([]store.Newsletter, int64, error) {
	newsletters, err := s.queries.ListNewsletters(ctx, store.ListNewslettersParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountNewsletters(ctx)
	return newsletters, total, err
}

// UpdateDraft edits a newsletter that is still a draft. Anything past
// draft is immutable: what was sent must stay readable as sent.
func (s *NewsletterService) UpdateDraft(ctx context.Context, id int64, in NewsletterInput) (store.Newsletter, error) {
	in, html, err := s.render(in)
	if err != nil {
		return store.Newsletter{}, err
	}

	affected, err := s.queries.UpdateNewsletterDraft(ctx, store.UpdateNewsletterParams{
		ID:          id,
		Subject:     in.Subject,
		Content:     in.Content,
		ContentHTML: html,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return store.Newsletter{}, err
	}
	if affected == 0 {
		// Either missing or already queued; tell the caller which.
		if _, err := s.Get(ctx, id); err != nil {
			return store.Newsletter{}, err
		}
		return store.Newsletter{}, ErrConflict
	}
	return s.Get(ctx, id)
}

// Queue marks a draft ready for delivery.
func (s *NewsletterService) Queue(ctx context.Context, id int64) (store.Newsletter, error) {
	affected, err := s.queries.QueueNewsletter(ctx, id, time.Now().UTC())
	if err != nil {
		return store.Newsletter{}, err
	}
	if affected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return store.Newsletter{}, err
		}
		return store.Newsletter{}, ErrConflict
	}
	return s.Get(ctx, id)
}

// DeleteDraft removes a newsletter that is still a draft.
func (s *NewsletterService) DeleteDraft(ctx context.Context, id int64) error {
	affected, err := s.queries.DeleteNewsletterDraft(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// SendQueued drains every queued newsletter, oldest first. Each
// newsletter is claimed with a status-predicate update, so overlapping
// drains (two scheduler ticks, two processes) never double-send. A
// per-recipient failure only costs that recipient; the newsletter is
// marked failed only when no recipient got it.
func (s *NewsletterService) SendQueued(ctx context.Context) error {
	queued, err := s.queries.ListNewslettersByStatus(ctx, model.NewsletterStatusQueued)
	if err != nil {
		return err
	}

	for _, n := range queued {
		affected, err := s.queries.MarkNewsletterSending(ctx, n.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if affected == 0 {
			continue // claimed elsewhere
		}
		s.deliver(ctx, n)
	}
	return nil
}

// deliver fans one newsletter out to every subscriber through a small
// worker pool and records the outcome.
func (s *NewsletterService) deliver(ctx context.Context, n store.Newsletter) {
	subscribers, err := s.queries.ListSubscribers(ctx)
	if err != nil {
		s.logger.Error("listing subscribers for newsletter", "newsletter_id", n.ID, "error", err)
		s.markFailed(ctx, n.ID, err.Error())
		return
	}
	if len(subscribers) == 0 {
		s.logger.Info("newsletter has no subscribers to send to", "newsletter_id", n.ID)
		s.markSent(ctx, n.ID, 0)
		return
	}

	jobs := make(chan store.Subscriber)
	var sent atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				msg := mail.Message{
					To:       sub.Email,
					Subject:  n.Subject,
					HTMLBody: n.ContentHTML,
					TextBody: n.Content,
				}
				if err := s.mailer.Send(ctx, msg); err != nil {
					s.logger.Error("sending newsletter to subscriber",
						"newsletter_id", n.ID, "email", sub.Email, "error", err)
					continue
				}
				sent.Add(1)
			}
		}()
	}

	for _, sub := range subscribers {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	if sent.Load() == 0 {
		s.markFailed(ctx, n.ID, "delivery failed for all recipients")
		return
	}
	s.logger.Info("newsletter delivered",
		"newsletter_id", n.ID, "recipients", sent.Load(), "subscribers", len(subscribers))
	s.markSent(ctx, n.ID, sent.Load())
}

func (s *NewsletterService) markSent(ctx context.Context, id, recipients int64) {
	if err := s.queries.MarkNewsletterSent(ctx, id, recipients, time.Now().UTC()); err != nil {
		s.logger.Error("marking newsletter sent", "newsletter_id", id, "error", err)
	}
}

func (s *NewsletterService) markFailed(ctx context.Context, id int64, reason string) {
	if err := s.queries.MarkNewsletterFailed(ctx, id, reason, time.Now().UTC()); err != nil {
		s.logger.Error("marking newsletter failed", "newsletter_id", id, "error", err)
	}
}
