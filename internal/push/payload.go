// Package push implements the notification pipeline: payload
// composition and the delivery fan-out over all active subscriptions.
package push

import (
	"encoding/json"
	"strings"
	"time"

	"pushpress/internal/config"
)

// Payload is the wire format delivered to the service worker. It is
// constructed per send and never persisted.
type Payload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	Icon      string `json:"icon,omitempty"`
	Badge     string `json:"badge,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Composer fills payload defaults from the site configuration. It does
// no I/O: icon resolution is a precedence chain over configured URLs.
type Composer struct {
	siteURL        string
	siteIconURL    string
	logoURL        string
	hasBundledIcon bool

	now func() time.Time
}

func NewComposer(cfg *config.Config, hasBundledIcon bool) *Composer {
	return &Composer{
		siteURL:        strings.TrimRight(cfg.SiteURL, "/"),
		siteIconURL:    cfg.SiteIconURL,
		logoURL:        cfg.LogoURL,
		hasBundledIcon: hasBundledIcon,
		now:            time.Now,
	}
}

// Compose builds a payload; url defaults to the site root and icon to
// the resolved site icon. The timestamp is milliseconds since epoch.
func (c *Composer) Compose(title, body, url, icon string) Payload {
	if url == "" {
		url = c.siteURL + "/"
	}
	if icon == "" {
		icon = c.ResolveIcon()
	}
	return Payload{
		Title:     title,
		Body:      body,
		URL:       url,
		Icon:      icon,
		Badge:     c.ResolveIcon(),
		Timestamp: c.now().UnixMilli(),
	}
}

// ResolveIcon picks the notification icon: site icon, then custom logo,
// then the bundled default asset, then the site favicon.
func (c *Composer) ResolveIcon() string {
	if c.siteIconURL != "" {
		return c.siteIconURL
	}
	if c.logoURL != "" {
		return c.logoURL
	}
	if c.hasBundledIcon {
		return c.siteURL + "/static/icon-192.png"
	}
	return c.siteURL + "/favicon.ico"
}
