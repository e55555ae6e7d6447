package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-board-chat/internal/application"
	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/pkg/response"
	"github.com/oksasatya/go-board-chat/pkg/validation"
)

// RoomDirectory is the room management surface. *application.ChatService satisfies it.
type RoomDirectory interface {
	CreateRoom(name string) (entity.ChatRoom, error)
	ListRooms() []entity.ChatRoom
	GetRoom(roomID string) (entity.ChatRoom, error)
}

type ChatHandler struct {
	Rooms RoomDirectory
}

func NewChatHandler(rooms RoomDirectory) *ChatHandler {
	return &ChatHandler{Rooms: rooms}
}

type createRoomQuery struct {
	Name string `form:"name" json:"name" binding:"required,roomname"`
}

// CreateRoom POST /api/chat/rooms?name=
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var q createRoomQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	room, err := h.Rooms.CreateRoom(q.Name)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"name": err.Error()})
		return
	}
	response.Success(c, http.StatusCreated, room, "room created", nil)
}

// ListRooms GET /api/chat/rooms
func (h *ChatHandler) ListRooms(c *gin.Context) {
	rooms := h.Rooms.ListRooms()
	response.Success(c, http.StatusOK, rooms, "ok", map[string]any{"count": len(rooms)})
}

// GetRoom GET /api/chat/rooms/:roomId
func (h *ChatHandler) GetRoom(c *gin.Context) {
	room, err := h.Rooms.GetRoom(c.Param("roomId"))
	if err != nil {
		if errors.Is(err, application.ErrRoomNotFound) {
			response.Error[any](c, http.StatusNotFound, "room not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "room lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, room, "ok", nil)
}
