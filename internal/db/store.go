package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a mutation targets an endpoint or article
// that does not exist. Callers of RemoveSubscription treat it as a
// non-fatal warning: the browser-side unsubscribe already happened.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a create collides with a unique
// constraint (username, API key value).
var ErrDuplicate = errors.New("already exists")

// Store is the persistence contract for the push pipeline. The gorm
// implementation backs normal operation; an in-memory implementation
// covers dev mode and tests.
type Store interface {
	// UpsertSubscription inserts or, when a row with the same endpoint
	// exists, updates its keys and metadata, refreshes last_used and
	// reactivates it. Safe under concurrent calls for one endpoint.
	UpsertSubscription(sub *Subscription) error
	// DeactivateSubscription flips is_active off without deleting.
	DeactivateSubscription(endpoint string) error
	// RemoveSubscription hard-deletes the row; ErrNotFound when absent.
	RemoveSubscription(endpoint string) error
	ListActiveSubscriptions() ([]Subscription, error)
	CountActiveSubscriptions() (int64, error)
	// PruneInactiveSubscriptions deletes rows deactivated before the
	// cutoff, returning how many were removed.
	PruneInactiveSubscriptions(cutoff time.Time) (int64, error)

	// GetSetting returns "" (and no error) for absent keys.
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	// UpsertArticle inserts or refreshes the article row identified by
	// ExternalID, leaving the notified_at marker untouched.
	UpsertArticle(a *Article) error
	GetArticle(externalID string) (*Article, error)
	// ClaimNotification atomically sets notified_at when it is still
	// unset; reports whether this caller won the claim.
	ClaimNotification(externalID string, at time.Time) (bool, error)

	AppendNotificationLog(l *NotificationLog) error
	RecentNotificationLogs(limit int) ([]NotificationLog, error)

	// Admin UI users.
	GetUserByUsername(username string) (*User, error)
	GetUserByID(id uint) (*User, error)
	CreateUser(u *User) error
	DeleteUser(id uint) error
	ListUsers() ([]User, error)
	UpdateUserPassword(id uint, passwordHash string) error

	// Webhook API keys.
	GetActiveAPIKey(key string) (*APIKey, error)
	GetAPIKeyByID(id uint) (*APIKey, error)
	CreateAPIKey(k *APIKey) error
	DeleteAPIKey(id uint) error
	ListAPIKeys() ([]APIKey, error)
	SetAPIKeyActive(id uint, active bool) error
}

// GormStore implements Store on a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}
