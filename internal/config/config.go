// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the portal server.
//
// SessionSecret has no default: a missing secret is a fatal configuration
// error at startup, never handled per-call.
type Config struct {
	Addr        string
	Env         string
	DatabaseURL string

	SessionSecret    string
	TokenTTL         time.Duration
	RefreshThreshold time.Duration

	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	BootstrapEmail    string
	BootstrapPassword string
}

// ErrMissingSecret indicates that SESSION_SECRET was not set.
var ErrMissingSecret = errors.New("SESSION_SECRET is required")

// Load reads configuration from the environment, applying development
// defaults for everything except the session secret and database URL.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        env("ADDR", ":8080"),
		Env:         env("APP_ENV", "dev"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SessionSecret:    os.Getenv("SESSION_SECRET"),
		TokenTTL:         envDuration("SESSION_TOKEN_TTL", 7*24*time.Hour),
		RefreshThreshold: envDuration("SESSION_REFRESH_THRESHOLD", 24*time.Hour),

		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),

		BootstrapEmail:    os.Getenv("BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("BOOTSTRAP_PASSWORD"),
	}

	if cfg.SessionSecret == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}

// Production reports whether the server runs outside a local/dev
// environment. It controls the Secure flag on the session cookie.
func (c *Config) Production() bool {
	return c.Env != "dev"
}

// BootstrapEnabled reports whether an initial account should be provisioned
// on startup.
func (c *Config) BootstrapEnabled() bool {
	return c.BootstrapEmail != "" && c.BootstrapPassword != ""
}

// SSOEnabled reports whether an OIDC provider is configured.
func (c *Config) SSOEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
