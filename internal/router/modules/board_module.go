package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	handlers "github.com/oksasatya/go-board-chat/internal/interface/http"
	"github.com/oksasatya/go-board-chat/internal/interface/middleware"
)

// BoardModule wires the board CRUD routes behind the access guard.
// Protected: /api/boards, /api/boards/:id, /api/boards/search
// Admin only: POST /api/boards/search/reindex
type BoardModule struct {
	Handler *handlers.BoardHandler
	Tokens  middleware.ClaimsExtractor
	Limits  redis.Scripter
	Logger  logrus.FieldLogger
}

func NewBoardModule(h *handlers.BoardHandler, tokens middleware.ClaimsExtractor, limits redis.Scripter, logger logrus.FieldLogger) *BoardModule {
	return &BoardModule{Handler: h, Tokens: tokens, Limits: limits, Logger: logger}
}

func (m *BoardModule) Register(_, api *gin.RouterGroup) {
	boards := api.Group("/boards")
	boards.Use(middleware.Auth(m.Tokens))
	boards.Use(middleware.RateLimit(m.Limits, 120, time.Minute, middleware.KeyByUsername(), nil, m.Logger, nil))
	{
		boards.POST("", m.Handler.Create)
		boards.GET("", m.Handler.List)
		boards.GET("/search", m.Handler.Search)
		boards.POST("/search/reindex", middleware.RequireRole(entity.RoleAdmin), m.Handler.Reindex)
		boards.GET("/:id", m.Handler.Get)
		boards.PUT("/:id", m.Handler.Update)
		boards.DELETE("/:id", m.Handler.Delete)
	}
}
