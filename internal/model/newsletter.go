// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Newsletter statuses. Status only ever moves forward:
// draft -> queued -> sending -> sent | failed.
const (
	NewsletterStatusDraft   = "draft"
	NewsletterStatusQueued  = "queued"
	NewsletterStatusSending = "sending"
	NewsletterStatusSent    = "sent"
	NewsletterStatusFailed  = "failed"
)

// CanTransitionNewsletter reports whether a newsletter may move from
// one status to another.
func CanTransitionNewsletter(from, to string) bool {
	switch from {
	case NewsletterStatusDraft:
		return to == NewsletterStatusQueued
	case NewsletterStatusQueued:
		return to == NewsletterStatusSending
	case NewsletterStatusSending:
		return to == NewsletterStatusSent || to == NewsletterStatusFailed
	default:
		return false
	}
}
