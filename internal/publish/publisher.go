// Package publish turns content state transitions reported by the host
// CMS into notification bursts, exactly once per article.
package publish

import (
	"context"
	"log"
	"strings"
	"time"

	"pushpress/internal/db"
	"pushpress/internal/push"
)

// Content statuses understood by the trigger.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// KindArticle is the only content kind that produces notifications;
// pages and attachments are ignored.
const KindArticle = "post"

// Event is one content state transition as reported by the webhook.
type Event struct {
	ExternalID string `json:"id"`
	Kind       string `json:"kind,omitempty"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`

	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	URL      string `json:"url"`
	ImageURL string `json:"image,omitempty"`
}

// FanOut is the slice of the delivery engine the trigger needs.
type FanOut interface {
	SendToAll(ctx context.Context, payload push.Payload) (push.Result, error)
}

// Publisher is the single registered handler for content-published
// events. Idempotency rests on the article's notified_at marker, which
// is claimed atomically before the fan-out runs: racing duplicate
// events cause at most one burst, and a failed burst is not retried by
// a later event.
type Publisher struct {
	store    db.Store
	composer *push.Composer
	engine   FanOut
}

func NewPublisher(store db.Store, composer *push.Composer, engine FanOut) *Publisher {
	return &Publisher{store: store, composer: composer, engine: engine}
}

// ContentPublished processes one transition. Returns an error only for
// storage failures; callers log it and must not fail the surrounding
// publish flow.
func (p *Publisher) ContentPublished(ctx context.Context, ev Event) error {
	if ev.Kind != "" && ev.Kind != KindArticle {
		return nil
	}
	if ev.NewStatus != StatusPublished || ev.OldStatus == StatusPublished {
		return nil
	}

	enabled, err := p.autoSendEnabled()
	if err != nil {
		return err
	}

	now := time.Now()
	article := &db.Article{
		ExternalID:  ev.ExternalID,
		Title:       ev.Title,
		Excerpt:     ev.Excerpt,
		URL:         ev.URL,
		ImageURL:    ev.ImageURL,
		PublishedAt: &now,
	}
	if err := p.store.UpsertArticle(article); err != nil {
		return err
	}

	if !enabled {
		return nil
	}

	claimed, err := p.store.ClaimNotification(ev.ExternalID, now)
	if err != nil {
		return err
	}
	if !claimed {
		// Marker already set: a previous event for this article
		// triggered (or at least attempted) the burst.
		return nil
	}

	excerpt := ev.Excerpt
	if excerpt == "" {
		excerpt = Excerpt(ev.Body, 20)
	}

	payload := p.composer.Compose(ev.Title, excerpt, ev.URL, ev.ImageURL)
	res, err := p.engine.SendToAll(ctx, payload)
	if err != nil {
		log.Printf("publish fan-out failed for article %s: %v", ev.ExternalID, err)
		return nil
	}
	log.Printf("publish notification for article %s: %s", ev.ExternalID, res.Message)
	return nil
}

func (p *Publisher) autoSendEnabled() (bool, error) {
	v, err := p.store.GetSetting(db.SettingPushOnPublish)
	if err != nil {
		return false, err
	}
	// Enabled unless explicitly switched off.
	return v != "0" && v != "false", nil
}

// Excerpt derives a short summary: tags stripped, whitespace collapsed,
// first n words.
func Excerpt(body string, n int) string {
	words := strings.Fields(stripTags(body))
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
