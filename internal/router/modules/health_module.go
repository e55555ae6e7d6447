package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-board-chat/internal/interface/http"
)

type HealthModule struct {
	Sessions handlers.SessionCounter
}

func NewHealthModule(sessions handlers.SessionCounter) *HealthModule {
	return &HealthModule{Sessions: sessions}
}

func (m *HealthModule) Register(root, _ *gin.RouterGroup) {
	root.GET("/healthz", handlers.Health(m.Sessions))
}
