package handlers

import (
	"log"

	"github.com/valyala/fasthttp"

	ui "pushpress/web"
)

// ServiceWorker serves sw.js from the origin root. Service-Worker-Allowed
// widens the scope to / even though the script lives under /sw.js, and
// caching is disabled so browsers pick up worker updates immediately.
func ServiceWorker() fasthttp.RequestHandler {
	body, err := ui.Asset("sw.js")
	if err != nil {
		log.Printf("service worker asset missing: %v", err)
	}
	return func(ctx *fasthttp.RequestCtx) {
		if body == nil {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		ctx.SetContentType("application/javascript")
		ctx.Response.Header.Set("Service-Worker-Allowed", "/")
		ctx.Response.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		ctx.Response.Header.Set("X-Content-Type-Options", "nosniff")
		ctx.SetBody(body)
	}
}

func staticAsset(name, contentType string) fasthttp.RequestHandler {
	body, err := ui.Asset(name)
	if err != nil {
		log.Printf("static asset missing: %s: %v", name, err)
	}
	return func(ctx *fasthttp.RequestCtx) {
		if body == nil {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		ctx.SetContentType(contentType)
		ctx.Response.Header.Set("Cache-Control", "public, max-age=3600")
		ctx.SetBody(body)
	}
}

// PushClientScript serves the browser-side subscription client.
func PushClientScript() fasthttp.RequestHandler {
	return staticAsset("push.js", "application/javascript")
}

func AppCSS() fasthttp.RequestHandler {
	return staticAsset("app.css", "text/css")
}

// AppIcon is the bundled notification icon fallback.
func AppIcon() fasthttp.RequestHandler {
	return staticAsset("static/icon-192.png", "image/png")
}
