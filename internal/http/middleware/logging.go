// README: Request logging through the structured logger.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"privatehire/internal/logging"
)

func Logging(log logging.Logger) gin.HandlerFunc {
	log = log.Action("http_request")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if uid := CallerUID(c); uid != "" {
			args = append(args, "uid", uid)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Warn("request failed", append(args, "errors", c.Errors.String())...)
		default:
			log.Info("request", args...)
		}
	}
}
