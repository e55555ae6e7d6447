package ws

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/internal/infrastructure/broker"
	"github.com/oksasatya/go-board-chat/internal/metrics"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSendQueueFull = errors.New("send queue full")
)

const writeWait = 10 * time.Second

// Subscriptions is the topic membership surface of the broker.
// *broker.TopicBroker satisfies it.
type Subscriptions interface {
	Subscribe(topic string, sub broker.Subscriber)
	Unsubscribe(topic, id string)
	UnsubscribeAll(id string) int
}

// Router validates, transforms and broadcasts an inbound chat event.
// *application.ChatService satisfies it.
type Router interface {
	Route(msg entity.ChatMessage) (entity.ChatMessage, int, error)
}

// Session is one client connection. Inbound frames are handled on the
// reading goroutine; outbound frames go through a bounded queue drained by
// a single writer. A full queue closes the session.
type Session struct {
	id     string
	conn   net.Conn
	subs   Subscriptions
	router Router
	logger logrus.FieldLogger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, conn net.Conn, subs Subscriptions, router Router, buffer int, logger logrus.FieldLogger) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		id:     id,
		conn:   conn,
		subs:   subs,
		router: router,
		logger: logger.WithField("session", id),
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Run serves the connection until the peer goes away or Close is called.
// Subscriptions are released before it returns.
func (s *Session) Run() {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	_ = s.enqueue(encode(Frame{Command: CmdConnected, Session: s.id}))
	s.readLoop()
	s.Close()
	// A concurrent Close may have run while a SUBSCRIBE was in flight.
	s.subs.UnsubscribeAll(s.id)
	<-writerDone
}

// Close releases every subscription and then closes the socket. Safe to
// call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		n := s.subs.UnsubscribeAll(s.id)
		close(s.done)
		_ = s.conn.Close()
		s.logger.WithField("topics", n).Debug("chat session closed")
	})
}

func (s *Session) enqueue(frame []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- frame:
		return nil
	default:
		// A session that cannot keep up is disconnected rather than left
		// with gaps in what it received.
		metrics.ChatDropped.Inc()
		s.logger.Warn("send queue full, closing session")
		s.Close()
		return ErrSendQueueFull
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsutil.WriteServerMessage(s.conn, ws.OpText, frame); err != nil {
				s.logger.WithError(err).Debug("chat write failed")
				s.Close()
				return
			}
		}
	}
}

func (s *Session) readLoop() {
	for {
		data, op, err := wsutil.ReadClientData(s.conn)
		if err != nil {
			return
		}
		if op != ws.OpText {
			_ = s.enqueue(errorFrame("text frames only"))
			continue
		}
		s.handle(data)
	}
}

func (s *Session) handle(data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		_ = s.enqueue(errorFrame("malformed frame"))
		return
	}

	switch f.Command {
	case CmdSubscribe:
		roomID, ok := RoomFromDestination(f.Destination)
		if !ok {
			_ = s.enqueue(errorFrame("unknown destination"))
			return
		}
		s.subs.Subscribe(roomID, &roomSubscriber{session: s, roomID: roomID})
		_ = s.enqueue(encode(Frame{Command: CmdReceipt, Destination: f.Destination}))
	case CmdUnsubscribe:
		roomID, ok := RoomFromDestination(f.Destination)
		if !ok {
			_ = s.enqueue(errorFrame("unknown destination"))
			return
		}
		s.subs.Unsubscribe(roomID, s.id)
		_ = s.enqueue(encode(Frame{Command: CmdReceipt, Destination: f.Destination}))
	case CmdSend:
		if f.Destination != SendDestination {
			_ = s.enqueue(errorFrame("unknown destination"))
			return
		}
		var msg entity.ChatMessage
		if err := json.Unmarshal(f.Body, &msg); err != nil {
			_ = s.enqueue(errorFrame("malformed chat message"))
			return
		}
		out, n, err := s.router.Route(msg)
		if err != nil {
			s.logger.WithError(err).WithField("room_id", msg.RoomID).Info("chat event rejected")
			_ = s.enqueue(errorFrame(err.Error()))
			return
		}
		metrics.ChatMessages.WithLabelValues(string(out.Type)).Inc()
		s.logger.WithFields(logrus.Fields{"room_id": out.RoomID, "type": out.Type, "delivered": n}).Debug("chat event routed")
	default:
		_ = s.enqueue(errorFrame("unknown command"))
	}
}

// roomSubscriber registers a session on one room topic and wraps each
// payload in a MESSAGE frame for that room.
type roomSubscriber struct {
	session *Session
	roomID  string
}

func (r *roomSubscriber) ID() string { return r.session.id }

func (r *roomSubscriber) Deliver(payload []byte) error {
	return r.session.enqueue(encode(Frame{
		Command:     CmdMessage,
		Destination: RoomTopic(r.roomID),
		Body:        json.RawMessage(payload),
	}))
}
