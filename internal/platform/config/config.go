// Package config loads application settings from the environment and an
// optional .env file. Malformed required values abort startup.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	Env      string `mapstructure:"APP_ENV"`

	// DatabaseURL is the Postgres DSN. Empty means in-memory stores
	// (local runs and tests).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`
	AccessTTL string `mapstructure:"ACCESS_TTL"`

	// GoogleClientID is the OAuth client id used as the expected audience
	// when verifying Google access tokens.
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`

	// SiteURL is the public base URL embedded in verification mails.
	SiteURL string `mapstructure:"SITE_URL"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// RemindersEnabled starts the daily renewal-reminder scheduler.
	RemindersEnabled bool `mapstructure:"REMINDERS_ENABLED"`
}

// Load reads .env (if present), then the environment, applies defaults and
// validates. Env vars override .env values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TTL", "15m")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("SMTP_HOST", "mailhog")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_FROM", "no-reply@subtrack.app")
	v.SetDefault("REMINDERS_ENABLED", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.DatabaseURL != "" &&
		!strings.HasPrefix(cfg.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
		return nil, errors.New("config: DATABASE_URL must be a postgres:// DSN")
	}
	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, errors.New("config: JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-only-secret-change-me"
	} else if len(cfg.JWTSecret) < 32 && cfg.Env == "production" {
		return nil, errors.New("config: JWT_SECRET must be at least 32 characters in production")
	}
	if cfg.GoogleClientID != "" && !strings.HasSuffix(cfg.GoogleClientID, ".apps.googleusercontent.com") {
		return nil, errors.New("config: GOOGLE_CLIENT_ID must end with .apps.googleusercontent.com")
	}
	if cfg.Env == "production" && !strings.HasPrefix(cfg.SiteURL, "https://") {
		return nil, errors.New("config: SITE_URL must use https in production")
	}

	return &cfg, nil
}

// AccessTokenTTL parses ACCESS_TTL, falling back to 15 minutes.
func (c *Config) AccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}
