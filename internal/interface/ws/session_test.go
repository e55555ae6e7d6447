package ws

import (
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-board-chat/internal/infrastructure/broker"
)

func TestFullSendQueueClosesSession(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	b := broker.NewTopicBroker(nil)
	// No writer runs, so nothing drains the queue.
	s := newSession("s-1", server, b, nil, 1, logger)
	b.Subscribe("42", &roomSubscriber{session: s, roomID: "42"})

	require.Equal(t, 1, b.Publish("42", []byte(`{"n":1}`)))
	assert.Equal(t, 0, b.Publish("42", []byte(`{"n":2}`)))

	select {
	case <-s.done:
	default:
		t.Fatal("session still open after its queue overflowed")
	}
	assert.Equal(t, 0, b.SubscriberCount("42"))
	assert.ErrorIs(t, s.enqueue([]byte("late")), ErrSessionClosed)
	assert.Equal(t, 0, b.Publish("42", []byte(`{"n":3}`)))
}

func TestQueueWithRoomKeepsSessionOpen(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	b := broker.NewTopicBroker(nil)
	s := newSession("s-2", server, b, nil, 4, logger)
	b.Subscribe("7", &roomSubscriber{session: s, roomID: "7"})

	for i := 0; i < 4; i++ {
		require.Equal(t, 1, b.Publish("7", []byte(`{}`)))
	}
	select {
	case <-s.done:
		t.Fatal("session closed while its queue had room")
	default:
	}
	assert.Equal(t, 1, b.SubscriberCount("7"))
	assert.Len(t, s.send, 4)
}
