// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestCanTransitionNewsletter(t *testing.T) {
	allowed := [][2]string{
		{NewsletterStatusDraft, NewsletterStatusQueued},
		{NewsletterStatusQueued, NewsletterStatusSending},
		{NewsletterStatusSending, NewsletterStatusSent},
		{NewsletterStatusSending, NewsletterStatusFailed},
	}
	forbidden := [][2]string{
		{NewsletterStatusSent, NewsletterStatusQueued},
		{NewsletterStatusFailed, NewsletterStatusQueued},
		{NewsletterStatusSent, NewsletterStatusDraft},
		{NewsletterStatusQueued, NewsletterStatusDraft},
		{NewsletterStatusQueued, NewsletterStatusSent},
		{NewsletterStatusDraft, NewsletterStatusSent},
	}

	for _, tr := range allowed {
		if !CanTransitionNewsletter(tr[0], tr[1]) {
			t.Errorf("transition %s -> %s should be allowed", tr[0], tr[1])
		}
	}
	for _, tr := range forbidden {
		if CanTransitionNewsletter(tr[0], tr[1]) {
			t.Errorf("transition %s -> %s should be forbidden", tr[0], tr[1])
		}
	}
}
