package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-board-chat/internal/interface/http"
	"github.com/oksasatya/go-board-chat/internal/interface/middleware"
	"github.com/oksasatya/go-board-chat/internal/metrics"
)

// AuthModule serves POST /auth/login outside the /api group.
type AuthModule struct {
	Handler    *handlers.AuthHandler
	Limits     redis.Scripter
	LoginLimit int
	Logger     logrus.FieldLogger
}

func NewAuthModule(h *handlers.AuthHandler, limits redis.Scripter, loginLimit int, logger logrus.FieldLogger) *AuthModule {
	return &AuthModule{Handler: h, Limits: limits, LoginLimit: loginLimit, Logger: logger}
}

func (m *AuthModule) Register(root, _ *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Limits, m.LoginLimit, time.Minute, middleware.KeyByIP(), nil, m.Logger,
		func(*gin.Context) { metrics.LoginAttempts.WithLabelValues(metrics.LoginRateLimited).Inc() })

	root.POST("/auth/login", loginLimiter, m.Handler.Login)
}
