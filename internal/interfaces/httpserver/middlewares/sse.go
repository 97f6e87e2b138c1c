package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrepareSSE switches the response into Server-Sent Events mode. It reports
// false when the underlying writer cannot flush, in which case streaming is
// not possible on this connection.
func PrepareSSE(c *gin.Context) bool {
	if _, ok := c.Writer.(http.Flusher); !ok {
		return false
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	// Reverse proxies must not buffer event streams.
	header.Set("X-Accel-Buffering", "no")
	return true
}
