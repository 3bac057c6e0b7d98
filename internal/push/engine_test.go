package push

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushpress/internal/config"
	"pushpress/internal/db"
	"pushpress/internal/vapid"
)

// fakeSender records attempts and answers with a per-endpoint status.
type fakeSender struct {
	mu       sync.Mutex
	statuses map[string]int
	errs     map[string]error
	calls    []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{statuses: make(map[string]int), errs: make(map[string]error)}
}

func (f *fakeSender) Send(_ context.Context, _ []byte, sub db.Subscription, _ vapid.Keys) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sub.Endpoint)
	if err := f.errs[sub.Endpoint]; err != nil {
		return 0, err
	}
	if status, ok := f.statuses[sub.Endpoint]; ok {
		return status, nil
	}
	return 201, nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestEngine(t *testing.T, store db.Store, sender Sender, ensureKeys bool) *Engine {
	t.Helper()
	keys := vapid.NewManager(store)
	if ensureKeys {
		_, err := keys.EnsureKeys()
		require.NoError(t, err)
	}
	return NewEngine(store, keys, sender, Options{Concurrency: 4, Timeout: time.Second})
}

func subscribe(t *testing.T, store db.Store, endpoint string) {
	t.Helper()
	require.NoError(t, store.UpsertSubscription(&db.Subscription{
		Endpoint: endpoint,
		P256dh:   "p256dh-" + endpoint,
		Auth:     "auth-" + endpoint,
	}))
}

func testPayload() Payload {
	cfg := &config.Config{SiteURL: "https://news.example", SiteIconURL: "https://news.example/icon.png"}
	return NewComposer(cfg, true).Compose("Court Ruling", "The verdict is in.", "", "")
}

func TestSendToAllNoSubscribers(t *testing.T) {
	store := db.NewMemoryStore()
	sender := newFakeSender()
	engine := newTestEngine(t, store, sender, true)

	res, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, "no subscribers", res.Message)
	assert.Zero(t, sender.callCount(), "must not attempt network calls")
}

func TestSendToAllNoVAPIDKeys(t *testing.T) {
	store := db.NewMemoryStore()
	subscribe(t, store, "https://push.example/abc")
	sender := newFakeSender()
	engine := newTestEngine(t, store, sender, false)

	res, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, "VAPID keys not configured", res.Message)
	assert.Zero(t, sender.callCount(), "must not attempt network calls")
}

func TestSendToAllCountsAndDeactivatesGone(t *testing.T) {
	store := db.NewMemoryStore()
	subscribe(t, store, "https://push.example/a")
	subscribe(t, store, "https://push.example/b")
	subscribe(t, store, "https://push.example/gone")

	sender := newFakeSender()
	sender.statuses["https://push.example/gone"] = 410

	engine := newTestEngine(t, store, sender, true)
	res, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "2 notifications sent, 1 failed", res.Message)

	active, err := store.ListActiveSubscriptions()
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, sub := range active {
		assert.NotEqual(t, "https://push.example/gone", sub.Endpoint)
	}
}

func TestSendToAllNotFoundDeactivates(t *testing.T) {
	store := db.NewMemoryStore()
	subscribe(t, store, "https://push.example/missing")

	sender := newFakeSender()
	sender.statuses["https://push.example/missing"] = 404

	engine := newTestEngine(t, store, sender, true)
	res, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	active, err := store.ListActiveSubscriptions()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSendToAllTransientFailureStaysActive(t *testing.T) {
	store := db.NewMemoryStore()
	subscribe(t, store, "https://push.example/flaky")

	sender := newFakeSender()
	sender.statuses["https://push.example/flaky"] = 500

	engine := newTestEngine(t, store, sender, true)
	res, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, 1, res.Failed)

	active, err := store.ListActiveSubscriptions()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "https://push.example/flaky", active[0].Endpoint)
}

func TestSendToAllTransportErrorDoesNotAbortBurst(t *testing.T) {
	store := db.NewMemoryStore()
	subscribe(t, store, "https://push.example/a")
	subscribe(t, store, "https://push.example/broken")
	subscribe(t, store, "https://push.example/b")

	sender := newFakeSender()
	sender.errs["https://push.example/broken"] = errors.New("connection refused")

	engine := newTestEngine(t, store, sender, true)
	res, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, sender.callCount(), "exactly one attempt per subscription")

	// Transport errors are not proof the endpoint is gone.
	active, err := store.ListActiveSubscriptions()
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestSendToAllAppendsBurstLog(t *testing.T) {
	store := db.NewMemoryStore()
	subscribe(t, store, "https://push.example/a")

	engine := newTestEngine(t, store, newFakeSender(), true)
	_, err := engine.SendToAll(context.Background(), testPayload())
	require.NoError(t, err)

	logs, err := store.RecentNotificationLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Court Ruling", logs[0].Title)
	assert.Equal(t, 1, logs[0].Success)
	assert.Equal(t, 1, logs[0].Total)
}
