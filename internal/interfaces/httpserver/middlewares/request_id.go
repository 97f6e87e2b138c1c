package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"abby-server/internal/utils/platformerrors"
)

// RequestIDHeader carries the request correlation ID.
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "requestID"

// RequestID assigns every request a correlation ID. An inbound header wins so
// IDs survive proxy hops; otherwise a fresh UUID is issued. The ID is echoed
// on the response, stored in the gin context for the logging and tracing
// middlewares, and propagated on the request context so errors raised
// downstream carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Request = c.Request.WithContext(platformerrors.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// RequestIDFromContext returns the request's correlation ID, or empty when the
// middleware did not run.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
