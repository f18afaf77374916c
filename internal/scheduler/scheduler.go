// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic background jobs: newsletter
// delivery and expired-credential cleanup.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/mms-go/internal/service"
	"github.com/olegiv/mms-go/internal/store"
)

// Scheduler owns the cron jobs that keep the system tidy without any
// admin interaction.
type Scheduler struct {
	db          *sql.DB
	newsletters *service.NewsletterService
	cron        *cron.Cron
	logger      *slog.Logger
}

// New creates a scheduler.
func New(db *sql.DB, newsletters *service.NewsletterService, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:          db,
		newsletters: newsletters,
		cron:        cron.New(),
		logger:      logger,
	}
}

// Start registers the jobs and begins ticking. Queued newsletters are
// drained every minute; expired sessions and reset tokens are purged
// hourly.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.drainNewsletters); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.purgeExpired); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) drainNewsletters() {
	if err := s.newsletters.SendQueued(context.Background()); err != nil {
		s.logger.Error("draining queued newsletters", "error", err)
	}
}

func (s *Scheduler) purgeExpired() {
	ctx := context.Background()
	queries := store.New(s.db)
	now := time.Now().UTC()

	sessions, err := queries.PurgeExpiredSessions(ctx, now)
	if err != nil {
		s.logger.Error("purging expired sessions", "error", err)
	}
	tokens, err := queries.PurgeExpiredResetTokens(ctx, now)
	if err != nil {
		s.logger.Error("purging expired reset tokens", "error", err)
	}
	if sessions > 0 || tokens > 0 {
		s.logger.Info("purged expired credentials", "sessions", sessions, "reset_tokens", tokens)
	}
}
