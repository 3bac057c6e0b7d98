package handlers

import (
	"bytes"

	"github.com/valyala/fasthttp"

	"pushpress/internal/config"
	dbpkg "pushpress/internal/db"
	httpctx "pushpress/internal/http/ctx"
	"pushpress/internal/vapid"
	ui "pushpress/web"
)

type LayoutData struct {
	Title        string
	Breadcrumb   string
	ActivePage   string
	PageTemplate string
	SiteName     string
	IsAdmin      bool
	Username     string
	AdminUser    string

	ActiveSubscribers int64
	VAPIDConfigured   bool
	VAPIDPublicKey    string
	AutoSend          bool
	RecentBursts      []dbpkg.NotificationLog

	Users   []dbpkg.User
	APIKeys []dbpkg.APIKey
}

func getLayoutData(ctx *fasthttp.RequestCtx, cfg *config.Config, activePage, breadcrumb, pageTemplate string) LayoutData {
	isAdmin := false
	username := ""
	if u, ok := httpctx.UserFromCtx(ctx); ok {
		if user, ok := u.(*dbpkg.User); ok && user != nil {
			username = user.Username
			isAdmin = user.IsAdmin || username == cfg.AdminUser
		}
	}

	return LayoutData{
		Title:        breadcrumb,
		Breadcrumb:   breadcrumb,
		ActivePage:   activePage,
		PageTemplate: pageTemplate,
		SiteName:     cfg.SiteName,
		IsAdmin:      isAdmin,
		Username:     username,
		AdminUser:    cfg.AdminUser,
	}
}

func renderLayout(ctx *fasthttp.RequestCtx, data LayoutData) {
	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "layout", data); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("render error")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}

// Dashboard renders the push overview: subscriber count, key status,
// the auto-send toggle, the manual-send form and recent bursts.
func Dashboard(store dbpkg.Store, mgr *vapid.Manager, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustUser(ctx); !ok {
			return
		}

		data := getLayoutData(ctx, cfg, "dashboard", "Push Notifications", "dashboard")

		if count, err := store.CountActiveSubscriptions(); err == nil {
			data.ActiveSubscribers = count
		}
		if keys, err := mgr.Keys(); err == nil {
			data.VAPIDConfigured = keys.Configured()
			data.VAPIDPublicKey = keys.Public
		}
		if v, err := store.GetSetting(dbpkg.SettingPushOnPublish); err == nil {
			data.AutoSend = v != "0" && v != "false"
		}
		if logs, err := store.RecentNotificationLogs(10); err == nil {
			data.RecentBursts = logs
		}

		renderLayout(ctx, data)
	}
}

func SettingsPage(store dbpkg.Store, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		keys, err := store.ListAPIKeys()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to load API keys")
			return
		}

		// Non-admins only see their own keys.
		if !user.IsAdmin && user.Username != cfg.AdminUser {
			own := keys[:0]
			for _, k := range keys {
				if k.UserID == user.ID {
					own = append(own, k)
				}
			}
			keys = own
		}

		data := getLayoutData(ctx, cfg, "settings", "Settings", "settings")
		data.APIKeys = keys
		renderLayout(ctx, data)
	}
}

func UsersPage(store dbpkg.Store, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}
		if !user.IsAdmin && user.Username != cfg.AdminUser {
			ctx.SetStatusCode(fasthttp.StatusForbidden)
			ctx.SetBodyString("forbidden")
			return
		}

		users, err := store.ListUsers()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to load users")
			return
		}

		data := getLayoutData(ctx, cfg, "users", "Users", "users")
		data.Users = users
		renderLayout(ctx, data)
	}
}
