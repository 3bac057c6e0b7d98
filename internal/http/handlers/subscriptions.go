package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"

	"pushpress/internal/config"
	dbpkg "pushpress/internal/db"
	"pushpress/internal/http/nonce"
	"pushpress/internal/vapid"
)

// PushConfig hands the browser client everything it needs to register:
// the VAPID public key, the service worker URL and a fresh nonce for the
// follow-up subscribe or unsubscribe call.
func PushConfig(cfg *config.Config, keys *vapid.Manager, issuer *nonce.Issuer) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		k, err := keys.Keys()
		if err != nil {
			jsonFailure(ctx, fasthttp.StatusInternalServerError, "failed to load push configuration")
			return
		}
		token, err := issuer.Issue()
		if err != nil {
			jsonFailure(ctx, fasthttp.StatusInternalServerError, "failed to issue token")
			return
		}
		jsonSuccess(ctx, map[string]any{
			"publicKey": k.Public,
			"swUrl":     "/sw.js",
			"nonce":     token,
			"enabled":   k.Configured(),
			"siteName":  cfg.SiteName,
		})
	}
}

type subscribeRequest struct {
	Nonce        string `json:"nonce"`
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

// requestNonce takes the token from the body when present, falling back
// to the X-Push-Nonce header.
func requestNonce(ctx *fasthttp.RequestCtx, bodyNonce string) string {
	if bodyNonce != "" {
		return bodyNonce
	}
	return string(ctx.Request.Header.Peek("X-Push-Nonce"))
}

func clientIP(ctx *fasthttp.RequestCtx) string {
	if fwd := string(ctx.Request.Header.Peek("X-Forwarded-For")); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	return ctx.RemoteIP().String()
}

// Subscribe registers or refreshes one browser push subscription. The
// endpoint URL is the identity: posting the same endpoint again rotates
// key material on the existing row instead of creating a duplicate.
func Subscribe(store dbpkg.Store, issuer *nonce.Issuer) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req subscribeRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonFailure(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if !issuer.Verify(requestNonce(ctx, req.Nonce)) {
			jsonFailure(ctx, fasthttp.StatusForbidden, "invalid or expired token")
			return
		}

		sub := req.Subscription
		if !strings.HasPrefix(sub.Endpoint, "https://") && !strings.HasPrefix(sub.Endpoint, "http://") {
			jsonFailure(ctx, fasthttp.StatusBadRequest, "invalid subscription endpoint")
			return
		}
		if len(sub.Endpoint) > 500 {
			jsonFailure(ctx, fasthttp.StatusBadRequest, "subscription endpoint too long")
			return
		}
		if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
			jsonFailure(ctx, fasthttp.StatusBadRequest, "missing subscription keys")
			return
		}

		record := &dbpkg.Subscription{
			Endpoint:  sub.Endpoint,
			P256dh:    sub.Keys.P256dh,
			Auth:      sub.Keys.Auth,
			UserAgent: string(ctx.Request.Header.UserAgent()),
			IPAddress: clientIP(ctx),
		}
		if err := store.UpsertSubscription(record); err != nil {
			jsonFailure(ctx, fasthttp.StatusInternalServerError, "failed to save subscription")
			return
		}

		jsonSuccess(ctx, map[string]any{"message": "subscribed"})
	}
}

type unsubscribeRequest struct {
	Nonce    string `json:"nonce"`
	Endpoint string `json:"endpoint"`
}

// Unsubscribe hard-deletes the subscription row. The browser already
// dropped its registration before calling here, so an unknown endpoint
// is still a success from the client's point of view.
func Unsubscribe(store dbpkg.Store, issuer *nonce.Issuer) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req unsubscribeRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonFailure(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if !issuer.Verify(requestNonce(ctx, req.Nonce)) {
			jsonFailure(ctx, fasthttp.StatusForbidden, "invalid or expired token")
			return
		}
		if req.Endpoint == "" {
			jsonFailure(ctx, fasthttp.StatusBadRequest, "endpoint required")
			return
		}

		if err := store.RemoveSubscription(req.Endpoint); err != nil {
			if errors.Is(err, dbpkg.ErrNotFound) {
				jsonSuccess(ctx, map[string]any{"message": "not subscribed"})
				return
			}
			jsonFailure(ctx, fasthttp.StatusInternalServerError, "failed to remove subscription")
			return
		}

		jsonSuccess(ctx, map[string]any{"message": "unsubscribed"})
	}
}
