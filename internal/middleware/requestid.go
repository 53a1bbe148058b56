package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"

	logEntryKey = "log_entry"
)

// RequestID assigns each request an ID and a logger carrying it. A client
// X-Request-ID is adopted only when it is a well-formed UUID, so callers
// such as the CLI can correlate their own logs. Anything else is replaced.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			if parsed, err := uuid.Parse(clientID); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Set(logEntryKey, log.WithField("request_id", id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LogEntry returns the request-scoped logger set by RequestID, or a plain
// entry on log when the middleware did not run.
func LogEntry(c *gin.Context, log *logrus.Logger) *logrus.Entry {
	if v, ok := c.Get(logEntryKey); ok {
		if e, ok := v.(*logrus.Entry); ok {
			return e
		}
	}

	return logrus.NewEntry(log)
}
