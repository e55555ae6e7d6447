package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-board-chat/internal/interface/http"
)

// Upgrader accepts chat WebSocket connections. *ws.Manager satisfies it.
type Upgrader interface {
	Handle(c *gin.Context)
}

// ChatModule serves the room REST endpoints and the /ws/chat upgrade. Both
// are public.
type ChatModule struct {
	Handler  *handlers.ChatHandler
	Upgrader Upgrader
}

func NewChatModule(h *handlers.ChatHandler, up Upgrader) *ChatModule {
	return &ChatModule{Handler: h, Upgrader: up}
}

func (m *ChatModule) Register(root, api *gin.RouterGroup) {
	rooms := api.Group("/chat/rooms")
	{
		rooms.POST("", m.Handler.CreateRoom)
		rooms.GET("", m.Handler.ListRooms)
		rooms.GET("/:roomId", m.Handler.GetRoom)
	}
	root.GET("/ws/chat", m.Upgrader.Handle)
}
