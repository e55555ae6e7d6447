package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/interface/middleware"
	"github.com/oksasatya/go-board-chat/internal/metrics"
)

// DebugModule exposes /metrics and /api/debug/vars to private networks only.
type DebugModule struct {
	Limits redis.Scripter
	Logger logrus.FieldLogger
}

func NewDebugModule(limits redis.Scripter, logger logrus.FieldLogger) *DebugModule {
	return &DebugModule{Limits: limits, Logger: logger}
}

func (m *DebugModule) Register(root, api *gin.RouterGroup) {
	private := middleware.OnlyAllowed(middleware.AllowPrivateIP())
	rl := middleware.RateLimit(m.Limits, 120, time.Minute, middleware.KeyByIP(), nil, m.Logger, nil)

	root.GET("/metrics", private, gin.WrapH(metrics.Handler()))
	api.GET("/debug/vars", private, rl, gin.WrapH(expvar.Handler()))
}
