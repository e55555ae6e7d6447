package ws

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/ws"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/metrics"
	"github.com/oksasatya/go-board-chat/pkg/response"
)

// Manager upgrades chat connections and tracks the live sessions.
type Manager struct {
	subs        Subscriptions
	router      Router
	logger      logrus.FieldLogger
	maxSessions int
	sendBuffer  int

	active   atomic.Int64
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
	wg       sync.WaitGroup
}

// NewManager builds a session manager. maxSessions <= 0 means unlimited.
func NewManager(subs Subscriptions, router Router, maxSessions, sendBuffer int, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Manager{
		subs:        subs,
		router:      router,
		logger:      logger,
		maxSessions: maxSessions,
		sendBuffer:  sendBuffer,
		sessions:    make(map[string]*Session),
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	return int(m.active.Load())
}

// Handle GET /ws/chat
// Over the session cap the request is refused with 503 before upgrading.
func (m *Manager) Handle(c *gin.Context) {
	n := m.active.Add(1)
	if m.maxSessions > 0 && n > int64(m.maxSessions) {
		m.active.Add(-1)
		response.Error[any](c, http.StatusServiceUnavailable, "too many chat sessions", nil)
		return
	}

	conn, _, _, err := ws.UpgradeHTTP(c.Request, c.Writer)
	if err != nil {
		m.active.Add(-1)
		m.logger.WithError(err).WithField("request_id", c.GetString("request_id")).Info("websocket upgrade failed")
		return
	}

	s := newSession(uuid.NewString(), conn, m.subs, m.router, m.sendBuffer, m.logger)
	if !m.add(s) {
		m.active.Add(-1)
		_ = conn.Close()
		return
	}
	metrics.ChatSessions.Inc()
	m.logger.WithFields(logrus.Fields{"session": s.ID(), "total": m.Count()}).Debug("chat session opened")

	defer func() {
		m.remove(s)
		m.active.Add(-1)
		metrics.ChatSessions.Dec()
		m.wg.Done()
	}()
	s.Run()
}

func (m *Manager) add(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.sessions[s.ID()] = s
	m.wg.Add(1)
	return true
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID())
	m.mu.Unlock()
}

// CloseAll stops accepting sessions, closes the open ones and waits for
// them to finish or ctx to end.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
