package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response
type Response struct {
	Code   int         `json:"code"`
	Data   interface{} `json:"data,omitempty"`
	Msg    string      `json:"msg"`
	Errors []string    `json:"errors,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// CheckLogin
func CheckLogin() Response {
	return Response{
		Code: http.StatusUnauthorized,
		Msg:  "please login first",
	}
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr logs err to log (when set) and hides it in release mode.
func DBErr(log *zap.Logger, msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	if err != nil && log != nil {
		log.Sugar().Errorw(msg, "err", err)
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// InternalErr
func InternalErr(log *zap.Logger, msg string, err error) Response {
	if msg == "" {
		msg = "internal server error"
	}
	if err != nil && log != nil {
		log.Sugar().Errorw(msg, "err", err)
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// ValidationErr lists every violated field.
func ValidationErr(msg string, fields []string) Response {
	if msg == "" {
		msg = "validation failed"
	}
	return Response{Code: http.StatusBadRequest, Msg: msg, Errors: fields}
}

// NotFoundErr
func NotFoundErr(msg string) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, nil)
}

// ConflictErr
func ConflictErr(msg string) Response {
	if msg == "" {
		msg = "conflict"
	}
	return Err(http.StatusConflict, msg, nil)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// UnavailableErr
func UnavailableErr(msg string) Response {
	if msg == "" {
		msg = "service unavailable"
	}
	return Err(http.StatusServiceUnavailable, msg, nil)
}
