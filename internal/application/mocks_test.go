package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Compare(hash, plain string) bool {
	return m.Called(hash, plain).Bool(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) CreateToken(subject string, role entity.Role) (string, time.Time, error) {
	args := m.Called(subject, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PublishJSON(ctx context.Context, eventType string, body any) error {
	return m.Called(ctx, eventType, body).Error(0)
}

type mockBoardRepo struct{ mock.Mock }

func (m *mockBoardRepo) Create(ctx context.Context, b *entity.Board) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id int64) (*entity.Board, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*entity.Board)
	return b, args.Error(1)
}

func (m *mockBoardRepo) List(ctx context.Context) ([]*entity.Board, error) {
	args := m.Called(ctx)
	bs, _ := args.Get(0).([]*entity.Board)
	return bs, args.Error(1)
}

func (m *mockBoardRepo) Update(ctx context.Context, b *entity.Board) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) IndexBoard(ctx context.Context, b *entity.Board) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockSearcher) DeleteBoard(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSearcher) Search(ctx context.Context, q string, size int) ([]entity.BoardHit, error) {
	args := m.Called(ctx, q, size)
	hits, _ := args.Get(0).([]entity.BoardHit)
	return hits, args.Error(1)
}

func (m *mockSearcher) Reindex(ctx context.Context, boards []*entity.Board) (int, error) {
	args := m.Called(ctx, boards)
	return args.Int(0), args.Error(1)
}

// topicRecorder is a Publisher that keeps what was published per topic.
type topicRecorder struct {
	mu        sync.Mutex
	published map[string][][]byte
	reach     int
}

func newTopicRecorder(reach int) *topicRecorder {
	return &topicRecorder{published: make(map[string][][]byte), reach: reach}
}

func (r *topicRecorder) Publish(topic string, payload []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published[topic] = append(r.published[topic], payload)
	return r.reach
}

func (r *topicRecorder) on(topic string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published[topic]
}
