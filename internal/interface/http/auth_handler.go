package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/application"
	"github.com/oksasatya/go-board-chat/internal/metrics"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
	"github.com/oksasatya/go-board-chat/pkg/response"
	"github.com/oksasatya/go-board-chat/pkg/validation"
)

// Authenticator is the login use case. *application.AuthService satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler struct {
	Auth   Authenticator
	Logger logrus.FieldLogger
}

func NewAuthHandler(auth Authenticator, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
}

// Login POST /auth/login
// Success is 200 with the token in the Authorization header and an empty body.
// Unknown user and wrong password both answer 400 "invalid credentials".
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.LoginFailed).Inc()
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) || errors.Is(err, application.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues(metrics.LoginFailed).Inc()
			h.Logger.WithFields(logrus.Fields{
				"username":   req.Username,
				"reason":     err.Error(),
				"request_id": c.GetString("request_id"),
			}).Info("login rejected")
			response.Error[any](c, http.StatusBadRequest, "invalid credentials", nil)
			return
		}
		metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		helpers.LogError(h.Logger, "login failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "login unavailable", nil)
		return
	}

	metrics.LoginAttempts.WithLabelValues(metrics.LoginSuccess).Inc()
	c.Header(helpers.AuthorizationHeader, token)
	c.Status(http.StatusOK)
}
