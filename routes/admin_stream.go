package routes

import (
	"community-hub-server/storage"
	"community-hub-server/utils"
	"fmt"
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
)

// AdminEventStream: GET /api/admin/stream — server-sent events fed by the
// Redis admin channel. Every connected console gets every notification; a
// heartbeat comment keeps idle proxies from closing the stream.
func AdminEventStream(ctx iris.Context) {
	if storage.Redis == nil {
		utils.JSONError(ctx, http.StatusServiceUnavailable, "stream_unavailable",
			"live notifications are not available")
		return
	}

	ctx.ContentType("text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	reqCtx := ctx.Request().Context()
	sub := storage.Redis.Subscribe(reqCtx, storage.AdminEventsChannel)
	defer sub.Close()

	flusher, ok := ctx.ResponseWriter().Naive().(http.Flusher)
	if !ok {
		utils.JSONError(ctx, http.StatusInternalServerError, "stream_unavailable",
			"streaming is not supported by this connection")
		return
	}

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	fmt.Fprint(ctx.ResponseWriter(), ": connected\n\n")
	flusher.Flush()

	messages := sub.Channel()
	for {
		select {
		case <-reqCtx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(ctx.ResponseWriter(), ": ping\n\n")
			flusher.Flush()
		case msg, open := <-messages:
			if !open {
				return
			}
			fmt.Fprintf(ctx.ResponseWriter(), "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
