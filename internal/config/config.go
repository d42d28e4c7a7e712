// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// knownDemoPasswords are bootstrap passwords that are refused in production.
var knownDemoPasswords = []string{
	"admin123",
	"admin",
	"password",
}

// Storage backends.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"TURISMO_DB_PATH" envDefault:"./data/turismo.db"`
	SessionSecret string `env:"TURISMO_SESSION_SECRET,required"`
	ServerHost    string `env:"TURISMO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"TURISMO_SERVER_PORT" envDefault:"3000"`
	Env           string `env:"TURISMO_ENV" envDefault:"development"`
	LogLevel      string `env:"TURISMO_LOG_LEVEL" envDefault:"info"`

	// Object storage
	StorageBackend string `env:"TURISMO_STORAGE_BACKEND" envDefault:"local"`
	StorageBucket  string `env:"TURISMO_STORAGE_BUCKET" envDefault:"turismo-curitiba"`
	StorageDir     string `env:"TURISMO_STORAGE_DIR" envDefault:"./uploads"`
	PublicURL      string `env:"TURISMO_PUBLIC_URL" envDefault:"http://localhost:3000"`

	// Optional MaxMind GeoLite2-Country database; audit entries get a country code when set.
	GeoIPDBPath string `env:"TURISMO_GEOIP_DB_PATH"`

	// Optional Redis URL; when set, sessions are kept in Redis instead of SQLite.
	RedisURL string `env:"TURISMO_REDIS_URL"`

	// Bootstrap administrator. Disabled when email or password is empty.
	BootstrapEmail    string `env:"TURISMO_BOOTSTRAP_EMAIL" envDefault:"admin@turismocuritiba.com"`
	BootstrapPassword string `env:"TURISMO_BOOTSTRAP_PASSWORD"`
	BootstrapName     string `env:"TURISMO_BOOTSTRAP_NAME" envDefault:"Administrador"`

	// Seeding configuration
	DoSeed bool `env:"TURISMO_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if Redis is configured as the session store.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// BootstrapEnabled reports whether the configured bootstrap administrator can log in.
func (c Config) BootstrapEnabled() bool {
	return c.BootstrapEmail != "" && c.BootstrapPassword != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("TURISMO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("TURISMO_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("TURISMO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageGCS:
		if cfg.StorageBucket == "" {
			return nil, fmt.Errorf("TURISMO_STORAGE_BUCKET is required for the gcs backend")
		}
	default:
		return nil, fmt.Errorf("TURISMO_STORAGE_BACKEND must be %q or %q, got %q",
			StorageLocal, StorageGCS, cfg.StorageBackend)
	}

	cfg.BootstrapEmail = strings.ToLower(strings.TrimSpace(cfg.BootstrapEmail))
	if cfg.IsProduction() && cfg.BootstrapEnabled() {
		for _, demo := range knownDemoPasswords {
			if cfg.BootstrapPassword == demo {
				return nil, fmt.Errorf("TURISMO_BOOTSTRAP_PASSWORD is a demo value and must not be used in production")
			}
		}
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

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
