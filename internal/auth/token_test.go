package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret-with-enough-length-0123456789"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, expiresAt, err := issuer.Issue(7, "alice", "superadmin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiresAt %v too soon", expiresAt)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.ID != 7 {
		t.Errorf("ID = %d, want 7", claims.ID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Role != "superadmin" {
		t.Errorf("Role = %q, want %q", claims.Role, "superadmin")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	other := NewTokenIssuer("another-secret-with-enough-length-987654", time.Hour)

	token, _, err := issuer.Issue(1, "bob", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, -time.Minute)

	token, _, err := issuer.Issue(1, "bob", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestTokenDigest(t *testing.T) {
	d1 := TokenDigest("token-a")
	d2 := TokenDigest("token-b")

	if d1 == d2 {
		t.Error("different tokens should have different digests")
	}
	if len(d1) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(d1))
	}
	if d1 != TokenDigest("token-a") {
		t.Error("digest should be deterministic")
	}
}
