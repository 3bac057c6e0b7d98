package handlers

import (
	"time"

	"github.com/valyala/fasthttp"

	dbpkg "pushpress/internal/db"
	"pushpress/internal/push"
	"pushpress/internal/vapid"
)

// SendNotification is the manual-send form on the admin page: compose a
// payload from the posted fields and fan it out immediately, bypassing
// the publish trigger and its idempotency marker.
func SendNotification(composer *push.Composer, engine *push.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		title := string(ctx.PostArgs().Peek("title"))
		body := string(ctx.PostArgs().Peek("body"))
		url := string(ctx.PostArgs().Peek("url"))
		icon := string(ctx.PostArgs().Peek("icon"))

		if title == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "title required")
			return
		}

		payload := composer.Compose(title, body, url, icon)
		res, err := engine.SendToAll(ctx, payload)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to send notifications")
			return
		}

		jsonResponse(ctx, map[string]any{
			"message": res.Message,
			"sent":    res.Success,
			"failed":  res.Failed,
			"total":   res.Total,
		})
	}
}

// RegenerateVAPIDKeys replaces the keypair. Every existing subscriber
// was registered against the old public key, so the response carries a
// warning the admin UI must show.
func RegenerateVAPIDKeys(mgr *vapid.Manager) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		keys, err := mgr.Regenerate()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to regenerate keys")
			return
		}

		jsonResponse(ctx, map[string]any{
			"publicKey": keys.Public,
			"warning":   "existing subscribers must re-subscribe before they receive pushes again",
		})
	}
}

// SetAutoSend toggles the publish trigger on or off.
func SetAutoSend(store dbpkg.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		enabledStr := string(ctx.PostArgs().Peek("enabled"))
		if enabledStr != "true" && enabledStr != "false" {
			errResponse(ctx, fasthttp.StatusBadRequest, "enabled (true|false) required")
			return
		}

		value := "1"
		if enabledStr == "false" {
			value = "0"
		}
		if err := store.SetSetting(dbpkg.SettingPushOnPublish, value); err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to save setting")
			return
		}

		ctx.Redirect("/", fasthttp.StatusSeeOther)
	}
}

// PushStats feeds the dashboard numbers.
func PushStats(store dbpkg.Store, mgr *vapid.Manager) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		count, err := store.CountActiveSubscriptions()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to count subscriptions")
			return
		}
		keys, err := mgr.Keys()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to load keys")
			return
		}
		autoSend, err := store.GetSetting(dbpkg.SettingPushOnPublish)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to load settings")
			return
		}

		jsonResponse(ctx, map[string]any{
			"active_subscribers": count,
			"vapid_configured":   keys.Configured(),
			"auto_send":          autoSend != "0" && autoSend != "false",
		})
	}
}

type burstRow struct {
	ID        uint   `json:"id"`
	CreatedAt string `json:"created_at"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Success   int    `json:"success"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
}

// RecentBursts lists the latest notification bursts, newest first.
func RecentBursts(store dbpkg.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		logs, err := store.RecentNotificationLogs(20)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to load notification history")
			return
		}

		rows := make([]burstRow, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, burstRow{
				ID:        l.ID,
				CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
				Title:     l.Title,
				URL:       l.URL,
				Success:   l.Success,
				Failed:    l.Failed,
				Total:     l.Total,
			})
		}
		jsonResponse(ctx, map[string]any{"bursts": rows})
	}
}
