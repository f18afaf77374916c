// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"MMS_DB_PATH" envDefault:"./data/mms.db"`
	JWTSecret  string `env:"MMS_JWT_SECRET,required"`
	ServerHost string `env:"MMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MMS_ENV" envDefault:"development"`
	LogLevel   string `env:"MMS_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"MMS_UPLOADS_DIR" envDefault:"./uploads"`

	// Token lifetimes in seconds
	TokenTTL      int `env:"MMS_TOKEN_TTL" envDefault:"86400"`      // Bearer token lifetime (24h)
	ResetTokenTTL int `env:"MMS_RESET_TOKEN_TTL" envDefault:"3600"` // Password reset token lifetime (1h)

	// Cache configuration
	RedisURL    string `env:"MMS_REDIS_URL"`                       // Optional Redis URL for the read-through cache
	CachePrefix string `env:"MMS_CACHE_PREFIX" envDefault:"mms:"`  // Redis key prefix
	CacheTTL    int    `env:"MMS_CACHE_TTL" envDefault:"300"`      // Default cache TTL in seconds
	CacheOff    bool   `env:"MMS_CACHE_DISABLED" envDefault:"false"` // Disable caching entirely

	// WebSocket origin allow-list (comma separated)
	AllowedOrigins []string `env:"MMS_ALLOWED_ORIGINS" envSeparator:","`

	// Frontend base URL used in password reset links and mail templates
	FrontendURL string `env:"MMS_FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Mail transport (SMTP). Mail is logged instead of sent when host is empty.
	SMTPHost     string `env:"MMS_SMTP_HOST"`
	SMTPPort     int    `env:"MMS_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"MMS_SMTP_USERNAME"`
	SMTPPassword string `env:"MMS_SMTP_PASSWORD"`
	MailFrom     string `env:"MMS_MAIL_FROM" envDefault:"no-reply@localhost"`

	// Image host (S3-compatible). Uploads fall back to local disk when unset.
	S3Bucket   string `env:"MMS_S3_BUCKET"`
	S3Region   string `env:"MMS_S3_REGION" envDefault:"us-east-1"`
	S3BaseURL  string `env:"MMS_S3_BASE_URL"` // Public URL prefix for uploaded objects
	S3Endpoint string `env:"MMS_S3_ENDPOINT"` // Optional custom endpoint (MinIO etc.)

	// GeoIP configuration
	GeoIPDBPath string `env:"MMS_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != "" && !c.CacheOff
}

// MailEnabled returns true if an SMTP transport is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// S3Enabled returns true if the S3 image host is configured.
func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinJWTSecretLength is the minimum required length for the signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate signing secret length
	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("MMS_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("MMS_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("MMS_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
