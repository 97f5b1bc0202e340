package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

// renderErr writes the response matching the kind of a service error.
// Unexpected errors are logged to log.
func renderErr(c *gin.Context, log *zap.Logger, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		c.JSON(http.StatusInternalServerError, serializer.InternalErr(log, "", err))
		return
	}

	switch {
	case errors.Is(se, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr(se.Msg, se.Fields))
	case errors.Is(se, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(se.Msg))
	case errors.Is(se, service.ErrConflict):
		c.JSON(http.StatusConflict, serializer.ConflictErr(se.Msg))
	case errors.Is(se, service.ErrDependentRecords):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(se.Msg, nil))
	case errors.Is(se, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(se.Msg))
	case errors.Is(se, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, serializer.UnavailableErr(se.Msg))
	default:
		c.JSON(http.StatusInternalServerError, serializer.InternalErr(log, "", err))
	}
}

func currentUser(c *gin.Context) (*model.User, bool) {
	u, ok := c.MustGet("user").(*model.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.CheckLogin())
	}
	return u, ok
}

// uuidParam parses a path parameter; a malformed id is reported as not found.
func uuidParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(what+" not found"))
		return uuid.Nil, false
	}
	return id, true
}
