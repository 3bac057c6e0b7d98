package push

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"pushpress/internal/db"
	"pushpress/internal/vapid"
)

// Result is the aggregate outcome of one fan-out burst. Per-endpoint
// detail is only available via logs.
type Result struct {
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Options tune the fan-out loop.
type Options struct {
	// Concurrency bounds in-flight deliveries; Timeout applies per
	// endpoint so one hanging push service cannot block the others.
	Concurrency int
	Timeout     time.Duration
}

// Engine iterates active subscriptions and delivers one push per
// subscription. Endpoints reported gone (404/410) are deactivated
// through the store before the burst continues.
type Engine struct {
	store  db.Store
	keys   *vapid.Manager
	sender Sender
	opts   Options
}

func NewEngine(store db.Store, keys *vapid.Manager, sender Sender, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Engine{store: store, keys: keys, sender: sender, opts: opts}
}

// SendToAll delivers payload to every subscription active at call time.
// Missing VAPID keys and an empty subscriber list are zero-effort
// results with an explanatory message, not errors; store failures do
// propagate. Individual delivery failures never abort the burst and are
// never retried within it.
func (e *Engine) SendToAll(ctx context.Context, payload Payload) (Result, error) {
	keys, err := e.keys.Keys()
	if err != nil {
		return Result{}, err
	}
	if !keys.Configured() {
		return Result{Message: "VAPID keys not configured"}, nil
	}

	subs, err := e.store.ListActiveSubscriptions()
	if err != nil {
		return Result{}, err
	}
	if len(subs) == 0 {
		return Result{Message: "no subscribers"}, nil
	}

	message, err := payload.Marshal()
	if err != nil {
		return Result{}, err
	}

	var (
		mu      sync.Mutex
		success int
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, e.opts.Timeout)
			defer cancel()

			status, err := e.sender.Send(sendCtx, message, sub, keys)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				failed++
				observeDelivery("failed")
				log.Printf("push delivery failed: endpoint=%s err=%v", truncateEndpoint(sub.Endpoint), err)
			case status >= 200 && status < 300:
				success++
				observeDelivery("success")
			case status == 404 || status == 410:
				failed++
				observeDelivery("gone")
				log.Printf("push endpoint gone (%d), deactivating: %s", status, truncateEndpoint(sub.Endpoint))
				if derr := e.store.DeactivateSubscription(sub.Endpoint); derr != nil {
					log.Printf("deactivate failed: endpoint=%s err=%v", truncateEndpoint(sub.Endpoint), derr)
				}
			default:
				// Transient failure assumption: count it, leave the
				// subscription active.
				failed++
				observeDelivery("failed")
				log.Printf("push delivery rejected: endpoint=%s status=%d", truncateEndpoint(sub.Endpoint), status)
			}
			return nil
		})
	}

	_ = g.Wait()
	observeBurst()

	res := Result{
		Success: success,
		Failed:  failed,
		Total:   len(subs),
		Message: fmt.Sprintf("%d notifications sent, %d failed", success, failed),
	}

	if err := e.store.AppendNotificationLog(&db.NotificationLog{
		Title:   payload.Title,
		URL:     payload.URL,
		Success: res.Success,
		Failed:  res.Failed,
		Total:   res.Total,
		Detail: datatypes.JSONMap{
			"body": payload.Body,
			"icon": payload.Icon,
		},
	}); err != nil {
		log.Printf("append notification log: %v", err)
	}

	return res, nil
}

// truncateEndpoint keeps log lines readable; endpoints carry long
// opaque tokens.
func truncateEndpoint(endpoint string) string {
	if len(endpoint) > 64 {
		return endpoint[:64] + "..."
	}
	return endpoint
}
