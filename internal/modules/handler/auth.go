package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc service.AuthService
	log *zap.Logger
}

func NewAuthHandler(s service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: s, log: log}
}

type CredentialsReq struct {
	Email    string `json:"email" binding:"required" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an account and return a bearer token valid for three days
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CredentialsReq	true	"Register payload"
//	@Success		201		{object}	serializer.Response{data=service.AuthOutput}
//	@Failure		409		{object}	serializer.Response
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := CredentialsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Register(c.Request.Context(), service.CredentialsInput{Email: req.Email, Password: req.Password})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange credentials for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CredentialsReq	true	"Login payload"
//	@Success		200		{object}	serializer.Response{data=service.AuthOutput}
//	@Failure		401		{object}	serializer.Response
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := CredentialsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Login(c.Request.Context(), service.CredentialsInput{Email: req.Email, Password: req.Password})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
