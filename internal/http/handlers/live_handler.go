// Live feed HTTP handler.
//
//   - GET /posts/live   (Server-Sent Events)
//
// The stream opens with the current snapshot of the newest posts and sends
// a new "snapshot" event whenever the feed changes. Slow clients skip
// intermediate snapshots. When the subscription ends on the server side an
// "error" event is sent and the stream closes; clients reconnect themselves.
package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/services"
)

// LiveSnapshot is the payload of a "snapshot" event.
type LiveSnapshot struct {
	Version uint64              `json:"version"`
	At      time.Time           `json:"at"`
	Posts   []services.PostView `json:"posts"`
}

// LivePosts godoc
// @ID          livePosts
// @Summary     Live feed
// @Description Server-Sent Events stream of the newest posts. Events: `snapshot` (handlers.LiveSnapshot) and `error` (handlers.ErrorResponse).
// @Tags        Posts
// @Produce     text/event-stream
// @Success     200  {object}  handlers.LiveSnapshot
// @Failure     503  {object}  handlers.ErrorResponse "Live feed unavailable"
// @Router      /posts/live [get]
func (h *Handlers) LivePosts(c *gin.Context) {
	if h.live == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeStreamFailed, "Live feed is not available.")
		return
	}
	ctx := c.Request.Context()
	ch, cancel, err := h.live.Subscribe(ctx)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusServiceUnavailable, ErrCodeStreamFailed, "Live feed is not available. Please try again.")
		return
	}
	defer cancel()

	viewer := userID(c)
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-ch:
			if !open {
				c.SSEvent("error", ErrorResponse{
					RequestID: c.Writer.Header().Get("X-Request-ID"),
					Code:      ErrCodeStreamFailed,
					Message:   "live feed closed",
				})
				c.Writer.Flush()
				return
			}
			c.SSEvent("snapshot", LiveSnapshot{
				Version: snap.Version,
				At:      snap.At,
				Posts:   h.posts.Views(viewer, snap.Posts),
			})
		case <-keepAlive.C:
			_, _ = io.WriteString(c.Writer, ": keep-alive\n\n")
		}
		c.Writer.Flush()
	}
}
