package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// LoggerMiddleware tags each request with an id and logs one line per request:
// request id, method, status, latency, client, source and path. Replayed
// idempotent responses are marked so retries are visible in the log.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		rid := shortID(requestID)
		replay := ""
		if c.Writer.Header().Get(ReplayedHeader) == "true" {
			replay = " (replay)"
		}

		log.Printf("[%s] %s | %d | %v | %s | src=%s | %s%s",
			rid,
			c.Request.Method,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			shortUUID(GetSourceID(c)),
			path,
			replay,
		)

		for _, e := range c.Errors {
			log.Printf("[%s] Error: %v", rid, e.Err)
		}
	}
}

func shortUUID(id uuid.UUID) string {
	if id == uuid.Nil {
		return "-"
	}
	return id.String()[:8]
}

// shortID trims a request id for log lines. Client supplied ids may be short.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
