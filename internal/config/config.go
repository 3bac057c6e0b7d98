package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	AdminUser     string
	AdminPassword string

	// DatabaseURL is the PostgreSQL connection URL. When empty the
	// service falls back to in-memory stores (dev mode); subscriptions
	// do not survive a restart in that mode.
	DatabaseURL string

	ListenAddr string

	// SiteName / SiteURL describe the publishing site this service
	// delivers notifications for. SiteURL is the default click-through
	// target and the base for the favicon fallback.
	SiteName string
	SiteURL  string

	// SiteIconURL and LogoURL feed the notification icon resolution
	// chain; either may be empty.
	SiteIconURL string
	LogoURL     string

	// ContactEmail becomes the VAPID subject (mailto:) sent to push
	// services with every delivery.
	ContactEmail string

	// NonceSecret signs the short-lived anti-forgery tokens handed to
	// browser clients for subscribe/unsubscribe calls.
	NonceSecret string

	// WebhookAPIKey, when set, is provisioned on startup as an active
	// API key for the publish-event webhook (owned by the bootstrap
	// admin). Useful for wiring up a CMS without the settings page.
	WebhookAPIKey string

	// SendConcurrency bounds the number of in-flight deliveries during
	// a fan-out. SendTimeout applies per endpoint, independent of the
	// others.
	SendConcurrency int
	SendTimeout     time.Duration

	// PruneAfterDays controls how long deactivated subscriptions are
	// retained for audit before the prune worker deletes them.
	PruneAfterDays int
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		AdminUser:       getenv("APP_ADMIN_USER", "admin"),
		AdminPassword:   getenv("APP_ADMIN_PASSWORD", "changeme"),
		DatabaseURL:     os.Getenv("APP_DATABASE_URL"),
		ListenAddr:      getenv("APP_LISTEN_ADDR", ":8080"),
		SiteName:        getenv("APP_SITE_NAME", "LegalPress"),
		SiteURL:         getenv("APP_SITE_URL", "http://localhost:8080"),
		SiteIconURL:     os.Getenv("APP_SITE_ICON_URL"),
		LogoURL:         os.Getenv("APP_LOGO_URL"),
		ContactEmail:    getenv("APP_CONTACT_EMAIL", "admin@localhost"),
		NonceSecret:     getenv("APP_NONCE_SECRET", "changeme-nonce-secret"),
		WebhookAPIKey:   os.Getenv("APP_WEBHOOK_API_KEY"),
		SendConcurrency: 8,
		SendTimeout:     30 * time.Second,
		PruneAfterDays:  90,
	}

	if v := os.Getenv("APP_SEND_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SendConcurrency = n
		}
	}
	if v := os.Getenv("APP_SEND_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SendTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("APP_PRUNE_AFTER_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PruneAfterDays = n
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
