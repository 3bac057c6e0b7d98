package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pushpress/internal/config"
)

// Connect opens a GORM database connection using APP_DATABASE_URL (PostgreSQL URL).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate the core tables.
	if err := db.AutoMigrate(&Subscription{}, &Article{}, &NotificationLog{}, &Setting{}, &User{}, &APIKey{}); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureBootstrapAdmin makes sure there is at least one admin user
// corresponding to the bootstrap credentials in config. If a user with
// that username already exists, it is left as-is.
func EnsureBootstrapAdmin(store Store, cfg *config.Config) error {
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := store.GetUserByUsername(cfg.AdminUser); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return store.CreateUser(&User{
		Username:     cfg.AdminUser,
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
}

// EnsureBootstrapAPIKey ensures the admin user owns a webhook key
// matching APP_WEBHOOK_API_KEY, so a freshly provisioned CMS can report
// publish events without a trip through the settings page.
func EnsureBootstrapAPIKey(store Store, cfg *config.Config) error {
	if cfg.WebhookAPIKey == "" {
		return nil
	}

	admin, err := store.GetUserByUsername(cfg.AdminUser)
	if err != nil {
		return err
	}

	if _, err := store.GetActiveAPIKey(cfg.WebhookAPIKey); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	return store.CreateAPIKey(&APIKey{
		UserID:      admin.ID,
		Name:        "bootstrap-cms",
		Environment: "prod",
		Key:         cfg.WebhookAPIKey,
		Active:      true,
	})
}
