// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "Vt3!xK9#mQ2$wP8@zR5%nL7&bJ4*cF6y"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MMS_JWT_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("CacheTTL = %d, want 300", cfg.CacheTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment = false, want true by default")
	}
	if cfg.MailEnabled() {
		t.Error("MailEnabled = true with no SMTP host configured")
	}
	if cfg.S3Enabled() {
		t.Error("S3Enabled = true with no bucket configured")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache = true with no Redis URL configured")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("MMS_JWT_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load accepted a short JWT secret")
	}
	if !strings.Contains(err.Error(), "MMS_JWT_SECRET") {
		t.Errorf("error %q does not mention MMS_JWT_SECRET", err)
	}
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	t.Setenv("MMS_JWT_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a known default secret")
	}
}

func TestServerAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MMS_SERVER_HOST", "0.0.0.0")
	t.Setenv("MMS_SERVER_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9000" {
		t.Errorf("ServerAddr = %q, want %q", got, "0.0.0.0:9000")
	}
}

func TestAllowedOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MMS_ALLOWED_ORIGINS", "https://example.org,https://admin.example.org")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, want 2 entries", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[1] != "https://admin.example.org" {
		t.Errorf("AllowedOrigins[1] = %q", cfg.AllowedOrigins[1])
	}
}

func TestCacheDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MMS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MMS_CACHE_DISABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache = true with cache disabled")
	}
}
