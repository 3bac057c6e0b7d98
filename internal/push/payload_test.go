package push

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pushpress/internal/config"
)

func testComposer(cfg *config.Config, hasBundledIcon bool) *Composer {
	c := NewComposer(cfg, hasBundledIcon)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestComposeDefaults(t *testing.T) {
	cfg := &config.Config{
		SiteURL:     "https://news.example/",
		SiteIconURL: "https://news.example/site-icon.png",
	}
	c := testComposer(cfg, true)

	p := c.Compose("Court Ruling", "The verdict is in.", "", "")

	assert.Equal(t, "https://news.example/", p.URL, "url defaults to the site root")
	assert.Equal(t, "https://news.example/site-icon.png", p.Icon)
	assert.Equal(t, "https://news.example/site-icon.png", p.Badge)
	assert.Equal(t, int64(1700000000000), p.Timestamp)
}

func TestComposeExplicitValuesWin(t *testing.T) {
	cfg := &config.Config{SiteURL: "https://news.example"}
	c := testComposer(cfg, true)

	p := c.Compose("t", "b", "https://news.example/article/42", "https://cdn.example/thumb.jpg")
	assert.Equal(t, "https://news.example/article/42", p.URL)
	assert.Equal(t, "https://cdn.example/thumb.jpg", p.Icon)
}

func TestResolveIconPrecedence(t *testing.T) {
	base := config.Config{
		SiteURL:     "https://news.example",
		SiteIconURL: "https://news.example/site-icon.png",
		LogoURL:     "https://news.example/logo.png",
	}

	cfg := base
	assert.Equal(t, "https://news.example/site-icon.png", testComposer(&cfg, true).ResolveIcon())

	cfg.SiteIconURL = ""
	assert.Equal(t, "https://news.example/logo.png", testComposer(&cfg, true).ResolveIcon())

	cfg.LogoURL = ""
	assert.Equal(t, "https://news.example/static/icon-192.png", testComposer(&cfg, true).ResolveIcon())

	assert.Equal(t, "https://news.example/favicon.ico", testComposer(&cfg, false).ResolveIcon())
}
