package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
)

// UserAuth returns a middleware that authenticates requests using user bearer tokens.
// It resolves the token to a user, sets the user in the context and tags the current
// span with user_id. Lookup failures are logged to log.
func UserAuth(auth service.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Not authorized, no token"))
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		user, err := auth.Authenticate(c.Request.Context(), raw)
		if err != nil {
			var se *service.Error
			if errors.As(err, &se) && errors.Is(se, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr(se.Msg))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr(log, "", err))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		c.Set("user", user)
		c.Next()
	}
}
