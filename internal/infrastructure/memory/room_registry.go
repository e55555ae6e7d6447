package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/internal/domain/repository"
)

// RoomRegistry is the in-process chat room directory. Rooms keep their
// creation order and live until the process exits.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]entity.ChatRoom
	order []string
	newID func() string
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]entity.ChatRoom),
		newID: uuid.NewString,
	}
}

// Create stores a room under a fresh random id.
func (r *RoomRegistry) Create(name string) entity.ChatRoom {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for _, taken := r.rooms[id]; taken; _, taken = r.rooms[id] {
		id = r.newID()
	}
	room := entity.ChatRoom{RoomID: id, RoomName: name}
	r.rooms[id] = room
	r.order = append(r.order, id)
	return room
}

// List returns a copy of all rooms in creation order.
func (r *RoomRegistry) List() []entity.ChatRoom {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.ChatRoom, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rooms[id])
	}
	return out
}

func (r *RoomRegistry) Get(roomID string) (entity.ChatRoom, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	return room, ok
}

// Len reports the number of rooms.
func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

var _ repository.ChatRoomRepository = (*RoomRegistry)(nil)
