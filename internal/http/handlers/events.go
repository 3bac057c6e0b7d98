package handlers

import (
	"encoding/json"
	"log"

	"github.com/valyala/fasthttp"

	"pushpress/internal/publish"
)

// PublishedEvent is the CMS webhook: one content state transition per
// call. The trigger decides whether a burst happens; the webhook only
// reports whether the event was taken in. A malformed event is the sole
// hard failure, everything downstream is logged and answered 202 so the
// CMS-side publish flow never breaks over a notification.
func PublishedEvent(pub *publish.Publisher) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var ev publish.Event
		if err := json.Unmarshal(ctx.PostBody(), &ev); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if ev.ExternalID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "id required")
			return
		}
		if ev.Title == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "title required")
			return
		}

		// Processing problems are logged, not surfaced: the CMS-side
		// publish flow must never fail because a notification did.
		if err := pub.ContentPublished(ctx, ev); err != nil {
			log.Printf("publish event %s: %v", ev.ExternalID, err)
		}

		ctx.SetStatusCode(fasthttp.StatusAccepted)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"accepted"}`)
	}
}
