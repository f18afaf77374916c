// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips dangerous elements from rendered newsletter
// bodies. UGCPolicy allows the usual formatting tags while removing
// <script>, event handlers, and the like.
var htmlSanitizer = bluemonday.UGCPolicy()

// RenderMarkdown converts markdown to sanitized HTML. Newsletter
// content is written by admins, but sanitizing anyway means a
// compromised admin account can't inject script into every
// subscriber's inbox.
func RenderMarkdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// ResetEmail builds the password reset message for an admin.
func ResetEmail(to, resetURL string) Message {
	html := fmt.Sprintf(`<p>A password reset was requested for your account.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires in one hour. If you did not request this, ignore this message.</p>`, resetURL)

	text := fmt.Sprintf("A password reset was requested for your account.\n\n"+
		"Reset your password: %s\n\n"+
		"The link expires in one hour. If you did not request this, ignore this message.\n", resetURL)

	return Message{
		To:       to,
		Subject:  "Password reset",
		HTMLBody: html,
		TextBody: text,
	}
}

// InquiryResponseEmail builds the reply sent when an admin responds to
// a contact inquiry.
func InquiryResponseEmail(to, subject, response string) Message {
	html, err := RenderMarkdown(response)
	if err != nil {
		html = ""
	}
	return Message{
		To:       to,
		Subject:  "Re: " + subject,
		HTMLBody: html,
		TextBody: response,
	}
}
