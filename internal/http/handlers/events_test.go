package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"pushpress/internal/config"
	dbpkg "pushpress/internal/db"
	"pushpress/internal/publish"
	"pushpress/internal/push"
)

type recordingFanOut struct {
	calls    int
	payloads []push.Payload
}

func (f *recordingFanOut) SendToAll(_ context.Context, payload push.Payload) (push.Result, error) {
	f.calls++
	f.payloads = append(f.payloads, payload)
	return push.Result{Success: 1, Total: 1, Message: "1 notifications sent, 0 failed"}, nil
}

func newTestPublisher(store dbpkg.Store, fan publish.FanOut) *publish.Publisher {
	cfg := &config.Config{SiteURL: "https://legalpress.example"}
	return publish.NewPublisher(store, push.NewComposer(cfg, true), fan)
}

func TestPublishedEventTriggersBurstOnce(t *testing.T) {
	store := dbpkg.NewMemoryStore()
	fan := &recordingFanOut{}
	handler := PublishedEvent(newTestPublisher(store, fan))

	body := `{"id":"42","kind":"post","old_status":"draft","new_status":"published","title":"Big Ruling","body":"<p>The court decided.</p>","url":"https://legalpress.example/big-ruling"}`

	ctx := postJSON(handler, body)
	assert.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
	assert.Equal(t, 1, fan.calls)

	// A repeated webhook delivery for the same article is accepted but
	// does not produce a second burst.
	ctx = postJSON(handler, body)
	assert.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
	assert.Equal(t, 1, fan.calls)

	article, err := store.GetArticle("42")
	require.NoError(t, err)
	assert.NotNil(t, article.NotifiedAt)
}

func TestPublishedEventIgnoresNonPublishTransition(t *testing.T) {
	store := dbpkg.NewMemoryStore()
	fan := &recordingFanOut{}
	handler := PublishedEvent(newTestPublisher(store, fan))

	ctx := postJSON(handler, `{"id":"7","old_status":"published","new_status":"published","title":"Edited"}`)
	assert.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
	assert.Zero(t, fan.calls)
}

func TestPublishedEventValidation(t *testing.T) {
	store := dbpkg.NewMemoryStore()
	fan := &recordingFanOut{}
	handler := PublishedEvent(newTestPublisher(store, fan))

	ctx := postJSON(handler, `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = postJSON(handler, `{"title":"no id","new_status":"published"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = postJSON(handler, `{"id":"9","new_status":"published"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	assert.Zero(t, fan.calls)
}
