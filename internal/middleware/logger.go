package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskflow-io/hourtrack/internal/modules/model"
)

// ZapLogger logs /api/ requests at info level and everything else at debug.
// Authenticated requests carry the user id.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		}
		if u, ok := c.Get("user"); ok {
			if user, ok := u.(*model.User); ok {
				fields = append(fields, "user_id", user.ID)
			}
		}

		if strings.HasPrefix(path, "/api/") {
			log.Sugar().Infow("HTTP", fields...)
		} else {
			log.Sugar().Debugw("HTTP", fields...)
		}
	}
}
