package mail

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("# Hello\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	if !strings.Contains(html, "<h1") {
		t.Errorf("expected heading in output, got %q", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("expected bold text in output, got %q", html)
	}
}

func TestRenderMarkdown_StripsScript(t *testing.T) {
	html, err := RenderMarkdown("Hi <script>alert(1)</script> there")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(html, "<script") {
		t.Errorf("script tag survived sanitization: %q", html)
	}
}

func TestResetEmail(t *testing.T) {
	msg := ResetEmail("admin@example.com", "https://example.com/reset?token=abc")

	if msg.To != "admin@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if !strings.Contains(msg.HTMLBody, "https://example.com/reset?token=abc") {
		t.Error("HTML body should contain the reset URL")
	}
	if !strings.Contains(msg.TextBody, "https://example.com/reset?token=abc") {
		t.Error("text body should contain the reset URL")
	}
}
