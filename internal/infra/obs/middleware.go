package obs

import (
	"log/slog"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Middleware bundles the observability handlers wired into the router.
type Middleware struct {
	Logger *slog.Logger
}

// RequestID echoes the incoming request id or generates one.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware emits one structured line per request.
func (m Middleware) LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m.Logger == nil {
			return
		}
		m.Logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

// HealthHandlers exposes liveness and readiness probes.
type HealthHandlers struct {
	Ready func() error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(503, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(200, gin.H{"status": "ok"})
}
