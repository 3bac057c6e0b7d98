package db

import (
	"time"

	"gorm.io/datatypes"
)

// Subscription represents one browser's push registration. The endpoint
// URL is the business key: re-subscribing with the same endpoint rotates
// the encryption keys on the existing row instead of duplicating it.
type Subscription struct {
	ID uint `gorm:"primaryKey"`

	// Endpoint is the push-service URL. Bounded so it can carry a
	// unique index; real endpoints stay well under this.
	Endpoint string `gorm:"uniqueIndex;size:500;not null"`

	// P256dh and Auth are the client-provided encryption key material,
	// opaque to us and forwarded as-is to the push library.
	P256dh string `gorm:"size:255;not null"`
	Auth   string `gorm:"size:255;not null"`

	// Diagnostic metadata, optional.
	UserAgent string `gorm:"size:500"`
	IPAddress string `gorm:"size:45"`

	CreatedAt time.Time
	LastUsed  time.Time

	// IsActive is flipped off when the push service reports the
	// endpoint gone (404/410). Inactive rows are retained for audit
	// until the prune worker removes them; explicit unsubscribes are
	// hard-deleted instead.
	IsActive bool `gorm:"default:true;index"`
}

// Article mirrors the content items of the host CMS that the publish
// webhook reports. Only the fields needed to compose a notification and
// the sent marker are kept here; the CMS stays authoritative for the
// content itself.
type Article struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// ExternalID is the CMS-side identifier for the article.
	ExternalID string `gorm:"uniqueIndex;size:128;not null"`

	Title   string `gorm:"size:500;not null"`
	Excerpt string `gorm:"type:text"`
	URL     string `gorm:"size:500"`
	// ImageURL is the representative image used as notification icon.
	ImageURL string `gorm:"size:500"`

	PublishedAt *time.Time

	// NotifiedAt is the idempotency marker: once set, publish events
	// for this article never cause another notification burst.
	NotifiedAt *time.Time
}

// NotificationLog records one fan-out burst: what was sent and the
// aggregate outcome. Per-endpoint delivery reports are not persisted,
// only logged; Detail carries burst-level extras (trigger source,
// zero-result message, and so on).
type NotificationLog struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time

	Title string `gorm:"size:500;not null"`
	URL   string `gorm:"size:500"`

	Success int `gorm:"not null"`
	Failed  int `gorm:"not null"`
	Total   int `gorm:"not null"`

	Detail datatypes.JSONMap `gorm:"type:json"`
}

// Setting is a persisted key/value pair for service-wide state: the
// VAPID keypair and the auto-send toggle. Modeled as explicit rows
// rather than ambient globals so tests can swap the store.
type Setting struct {
	Key   string `gorm:"primaryKey;size:128"`
	Value string `gorm:"type:text"`

	UpdatedAt time.Time
}

// Setting keys.
const (
	SettingVAPIDPublicKey  = "vapid_public_key"
	SettingVAPIDPrivateKey = "vapid_private_key"
	SettingPushOnPublish   = "push_on_publish"
)
