// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mail delivers transactional and newsletter email.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer sends email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer creates an SMTP mailer from the given config.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := gomail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	mm.Subject(msg.Subject)

	if msg.HTMLBody != "" {
		mm.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
		if msg.TextBody != "" {
			mm.AddAlternativeString(gomail.TypeTextPlain, msg.TextBody)
		}
	} else {
		mm.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer logs messages instead of sending them. Used in development
// and whenever SMTP is not configured.
type LogMailer struct{}

// Send logs the message and succeeds.
func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail (not sent, SMTP disabled)",
		"to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTMLBody)+len(msg.TextBody))
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = LogMailer{}
)
