// Package ws is the chat transport: a small STOMP-flavoured JSON frame
// protocol carried over WebSocket connections.
package ws

import (
	"encoding/json"
	"strings"
)

// Client commands.
const (
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
	CmdSend        = "SEND"
)

// Server commands.
const (
	CmdConnected = "CONNECTED"
	CmdReceipt   = "RECEIPT"
	CmdMessage   = "MESSAGE"
	CmdError     = "ERROR"
)

const (
	// RoomTopicPrefix prefixes a room id to form its subscription destination.
	RoomTopicPrefix = "/topic/chat/room/"
	// SendDestination is where clients SEND chat events.
	SendDestination = "/app/chat/message"
)

// Frame is one JSON text frame in either direction.
type Frame struct {
	Command     string          `json:"command"`
	Destination string          `json:"destination,omitempty"`
	Session     string          `json:"session,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// RoomTopic returns the destination clients subscribe to for roomID.
func RoomTopic(roomID string) string {
	return RoomTopicPrefix + roomID
}

// RoomFromDestination extracts the room id from a room topic destination.
func RoomFromDestination(dest string) (string, bool) {
	roomID, ok := strings.CutPrefix(dest, RoomTopicPrefix)
	if !ok || roomID == "" || strings.Contains(roomID, "/") {
		return "", false
	}
	return roomID, true
}

func encode(f Frame) []byte {
	b, err := json.Marshal(f)
	if err != nil {
		// Frame holds only strings and pre-encoded JSON.
		b, _ = json.Marshal(Frame{Command: CmdError, Message: "encode failed"})
	}
	return b
}

func errorFrame(msg string) []byte {
	return encode(Frame{Command: CmdError, Message: msg})
}
