package publish

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushpress/internal/config"
	"pushpress/internal/db"
	"pushpress/internal/push"
)

type fakeFanOut struct {
	mu       sync.Mutex
	payloads []push.Payload
	result   push.Result
}

func (f *fakeFanOut) SendToAll(_ context.Context, payload push.Payload) (push.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.result, nil
}

func (f *fakeFanOut) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func newTestPublisher(store db.Store, fan *fakeFanOut) *Publisher {
	cfg := &config.Config{SiteURL: "https://news.example", SiteIconURL: "https://news.example/icon.png"}
	return NewPublisher(store, push.NewComposer(cfg, true), fan)
}

func publishedEvent(id string) Event {
	return Event{
		ExternalID: id,
		OldStatus:  StatusDraft,
		NewStatus:  StatusPublished,
		Title:      "Court Ruling",
		Body:       "<p>The supreme court issued a landmark verdict today.</p>",
		URL:        "https://news.example/article/" + id,
	}
}

func TestContentPublishedFiresOnce(t *testing.T) {
	store := db.NewMemoryStore()
	fan := &fakeFanOut{result: push.Result{Success: 3, Total: 3}}
	p := newTestPublisher(store, fan)

	require.NoError(t, p.ContentPublished(context.Background(), publishedEvent("42")))
	require.NoError(t, p.ContentPublished(context.Background(), publishedEvent("42")))

	assert.Equal(t, 1, fan.calls(), "marker must suppress the second burst")

	article, err := store.GetArticle("42")
	require.NoError(t, err)
	assert.NotNil(t, article.NotifiedAt)
}

func TestContentPublishedIgnoresNonPublishTransitions(t *testing.T) {
	store := db.NewMemoryStore()
	fan := &fakeFanOut{}
	p := newTestPublisher(store, fan)

	ev := publishedEvent("1")
	ev.NewStatus = StatusDraft
	require.NoError(t, p.ContentPublished(context.Background(), ev))

	ev = publishedEvent("2")
	ev.OldStatus = StatusPublished
	require.NoError(t, p.ContentPublished(context.Background(), ev))

	ev = publishedEvent("3")
	ev.Kind = "page"
	require.NoError(t, p.ContentPublished(context.Background(), ev))

	assert.Zero(t, fan.calls())
}

func TestContentPublishedRespectsAutoSendToggle(t *testing.T) {
	store := db.NewMemoryStore()
	require.NoError(t, store.SetSetting(db.SettingPushOnPublish, "0"))
	fan := &fakeFanOut{}
	p := newTestPublisher(store, fan)

	require.NoError(t, p.ContentPublished(context.Background(), publishedEvent("7")))
	assert.Zero(t, fan.calls())

	// The article row is still recorded, and the marker stays open so
	// enabling the toggle later does not lose the next publish.
	article, err := store.GetArticle("7")
	require.NoError(t, err)
	assert.Nil(t, article.NotifiedAt)
}

func TestContentPublishedComposesFromEvent(t *testing.T) {
	store := db.NewMemoryStore()
	fan := &fakeFanOut{}
	p := newTestPublisher(store, fan)

	require.NoError(t, p.ContentPublished(context.Background(), publishedEvent("9")))
	require.Equal(t, 1, fan.calls())

	payload := fan.payloads[0]
	assert.Equal(t, "Court Ruling", payload.Title)
	assert.Equal(t, "The supreme court issued a landmark verdict today.", payload.Body)
	assert.Equal(t, "https://news.example/article/9", payload.URL)
	assert.Equal(t, "https://news.example/icon.png", payload.Icon)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "one two three", Excerpt("<b>one</b> two   three", 20))

	long := "<p>w1 w2 w3 w4 w5 w6 w7 w8 w9 w10 w11 w12 w13 w14 w15 w16 w17 w18 w19 w20 w21 w22</p>"
	got := Excerpt(long, 20)
	assert.Equal(t, "w1 w2 w3 w4 w5 w6 w7 w8 w9 w10 w11 w12 w13 w14 w15 w16 w17 w18 w19 w20…", got)

	assert.Equal(t, "", Excerpt("", 20))
}
