package repository

import "github.com/oksasatya/go-board-chat/internal/domain/entity"

// ChatRoomRepository is the chat room directory. Rooms are never removed.
type ChatRoomRepository interface {
	Create(name string) entity.ChatRoom
	List() []entity.ChatRoom
	Get(roomID string) (entity.ChatRoom, bool)
}
