package entity

import "fmt"

// ChatRoom is an in-memory chat room. RoomID never changes once assigned.
type ChatRoom struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
}

// MessageType discriminates inbound chat events.
type MessageType string

const (
	MessageEnter MessageType = "ENTER"
	MessageTalk  MessageType = "TALK"
)

// Valid reports whether t is a known chat event type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageEnter, MessageTalk:
		return true
	default:
		return false
	}
}

// ChatMessage is a transient chat event; it is never stored.
type ChatMessage struct {
	Type    MessageType `json:"type"`
	RoomID  string      `json:"room_id"`
	Sender  string      `json:"sender"`
	Message string      `json:"message"`
}

// JoinAnnouncement is the body broadcast for an ENTER event.
func JoinAnnouncement(sender string) string {
	return fmt.Sprintf("%s has joined.", sender)
}
