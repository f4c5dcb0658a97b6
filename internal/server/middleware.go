package server

import (
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// requestIDs hands out monotonic ULIDs; MonotonicEntropy is not goroutine safe
type requestIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newRequestIDs() *requestIDs {
	return &requestIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (r *requestIDs) next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Now(), r.entropy).String()
}

// requestID keeps a well-formed incoming X-Request-ID, otherwise assigns a new one
func requestID(ids *requestIDs) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := ulid.ParseStrict(id); err != nil {
			id = ids.next()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one structured line per request
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		switch status := c.Writer.Status(); {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		logger.Log(c.Request.Context(), level, "HTTP request",
			"request_id", c.GetString(RequestIDHeader),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"response_size", c.Writer.Size(),
			"remote_addr", c.ClientIP(),
			"duration", time.Since(start))
	}
}

// recovery turns handler panics into a logged 500
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("HTTP handler panic recovered",
			"request_id", c.GetString(RequestIDHeader),
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		c.AbortWithStatusJSON(500, gin.H{"error": "Internal Server Error"})
	})
}
