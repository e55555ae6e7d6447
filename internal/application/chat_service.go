package application

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	repo "github.com/oksasatya/go-board-chat/internal/domain/repository"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidChatEvent = errors.New("invalid chat event")
	ErrRoomNameRequired = errors.New("room name is required")
)

// Publisher fans a payload out to a topic's current subscribers and reports
// how many received it. *broker.TopicBroker satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte) int
}

// ChatService owns the room directory and routes chat events to room topics.
type ChatService struct {
	Rooms  repo.ChatRoomRepository
	Broker Publisher
}

func NewChatService(rooms repo.ChatRoomRepository, broker Publisher) *ChatService {
	return &ChatService{Rooms: rooms, Broker: broker}
}

func (s *ChatService) CreateRoom(name string) (entity.ChatRoom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.ChatRoom{}, ErrRoomNameRequired
	}
	return s.Rooms.Create(name), nil
}

func (s *ChatService) ListRooms() []entity.ChatRoom {
	return s.Rooms.List()
}

func (s *ChatService) GetRoom(roomID string) (entity.ChatRoom, error) {
	room, ok := s.Rooms.Get(roomID)
	if !ok {
		return entity.ChatRoom{}, ErrRoomNotFound
	}
	return room, nil
}

// Transform applies the per-type rewrite: ENTER becomes a join
// announcement, TALK passes through.
func Transform(msg entity.ChatMessage) (entity.ChatMessage, error) {
	if strings.TrimSpace(msg.RoomID) == "" {
		return msg, oops.Code("CHAT_ROOM_MISSING").Wrap(ErrInvalidChatEvent)
	}
	switch msg.Type {
	case entity.MessageEnter:
		msg.Message = entity.JoinAnnouncement(msg.Sender)
	case entity.MessageTalk:
	default:
		return msg, oops.Code("CHAT_TYPE_UNKNOWN").With("type", string(msg.Type)).Wrap(ErrInvalidChatEvent)
	}
	return msg, nil
}

// Route transforms msg and broadcasts it on the room's topic. The room does
// not have to be registered. It returns the delivered message and the
// number of subscribers reached.
func (s *ChatService) Route(msg entity.ChatMessage) (entity.ChatMessage, int, error) {
	out, err := Transform(msg)
	if err != nil {
		return msg, 0, err
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return msg, 0, oops.Code("CHAT_ENCODE_FAILED").Wrap(err)
	}
	return out, s.Broker.Publish(out.RoomID, payload), nil
}
