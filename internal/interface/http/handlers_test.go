package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-board-chat/internal/application"
	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/internal/domain/repository"
	"github.com/oksasatya/go-board-chat/internal/infrastructure/memory"
	"github.com/oksasatya/go-board-chat/internal/interface/middleware"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
	"github.com/oksasatya/go-board-chat/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// userStore is a map-backed credential store.
type userStore map[string]*entity.User

func (s userStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	if u, ok := s[username]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s userStore) Create(_ context.Context, u *entity.User) error {
	s[u.Username] = u
	return nil
}

func loginRouter(t *testing.T) (*gin.Engine, *helpers.TokenService) {
	t.Helper()
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	tokens := helpers.NewTokenService("handler-test-secret-handler-test", "test", time.Hour)
	auth := application.NewAuthService(userStore{}, hasher, tokens, nil, nil)
	_, err := auth.Register(context.Background(), "alice", "secret1", entity.RoleUser)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(auth, quietLogger()).Login)
	return r, tokens
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginAliceScenario(t *testing.T) {
	r, tokens := loginRouter(t)

	w := postJSON(r, "/auth/login", `{"username":"alice","password":"secret1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	header := w.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "))

	assert.True(t, tokens.ValidateToken(header))
	claims, err := tokens.ExtractClaims(header)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	r, _ := loginRouter(t)

	unknown := postJSON(r, "/auth/login", `{"username":"mallory","password":"secret1"}`)
	wrong := postJSON(r, "/auth/login", `{"username":"alice","password":"nope"}`)

	for _, w := range []*httptest.ResponseRecorder{unknown, wrong} {
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, w.Header().Get("Authorization"))
		assert.Equal(t, "invalid credentials", decode(t, w).Message)
	}
}

func TestLoginBadPayload(t *testing.T) {
	r, _ := loginRouter(t)

	for _, body := range []string{`{`, `{"username":"alice"}`, `{"username":"","password":"x"}`} {
		w := postJSON(r, "/auth/login", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Empty(t, w.Header().Get("Authorization"))
	}
}

type failingAuth struct{}

func (failingAuth) Login(context.Context, string, string) (string, error) {
	return "", errors.New("db down")
}

func TestLoginInternalError(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(failingAuth{}, quietLogger()).Login)

	w := postJSON(r, "/auth/login", `{"username":"alice","password":"secret1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Authorization"))
}

type mockBoards struct{ mock.Mock }

func (m *mockBoards) Create(ctx context.Context, author, title, content string) (*entity.Board, error) {
	args := m.Called(ctx, author, title, content)
	b, _ := args.Get(0).(*entity.Board)
	return b, args.Error(1)
}

func (m *mockBoards) Get(ctx context.Context, id int64) (*entity.Board, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*entity.Board)
	return b, args.Error(1)
}

func (m *mockBoards) List(ctx context.Context) ([]*entity.Board, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]*entity.Board)
	return b, args.Error(1)
}

func (m *mockBoards) Update(ctx context.Context, actor string, id int64, title, content string) (*entity.Board, error) {
	args := m.Called(ctx, actor, id, title, content)
	b, _ := args.Get(0).(*entity.Board)
	return b, args.Error(1)
}

func (m *mockBoards) Delete(ctx context.Context, actor string, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockBoards) SearchBoards(ctx context.Context, q string, size int) ([]entity.BoardHit, error) {
	args := m.Called(ctx, q, size)
	h, _ := args.Get(0).([]entity.BoardHit)
	return h, args.Error(1)
}

func (m *mockBoards) Reindex(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func boardRouter(boards BoardUseCase, tokens *helpers.TokenService) *gin.Engine {
	h := NewBoardHandler(boards, quietLogger())
	r := gin.New()
	g := r.Group("/api/boards", middleware.Auth(tokens))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.POST("/search/reindex", middleware.RequireRole(entity.RoleAdmin), h.Reindex)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

func authed(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func testTokens(t *testing.T) (*helpers.TokenService, string, string) {
	t.Helper()
	tokens := helpers.NewTokenService("handler-test-secret-handler-test", "test", time.Hour)
	user, _, err := tokens.CreateToken("alice", entity.RoleUser)
	require.NoError(t, err)
	admin, _, err := tokens.CreateToken("root", entity.RoleAdmin)
	require.NoError(t, err)
	return tokens, user, admin
}

func TestBoardDeleteWithoutTokenNeverMutates(t *testing.T) {
	tokens, _, _ := testTokens(t)
	boards := &mockBoards{}
	r := boardRouter(boards, tokens)

	for _, req := range []*http.Request{
		authed(http.MethodDelete, "/api/boards/1", "", ""),
		authed(http.MethodPost, "/api/boards", `{"title":"t","content":"c"}`, ""),
		authed(http.MethodPut, "/api/boards/1", `{"title":"t","content":"c"}`, "Bearer forged.token.value"),
		authed(http.MethodGet, "/api/boards", "", ""),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, req.Method+" "+req.URL.Path)
	}
	boards.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	boards.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	boards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	boards.AssertNotCalled(t, "List", mock.Anything)
}

func TestBoardCRUD(t *testing.T) {
	tokens, user, _ := testTokens(t)
	boards := &mockBoards{}
	r := boardRouter(boards, tokens)

	created := &entity.Board{ID: 5, Title: "t", Content: "c", Author: "alice"}
	boards.On("Create", mock.Anything, "alice", "t", "c").Return(created, nil)
	boards.On("Get", mock.Anything, int64(5)).Return(created, nil)
	boards.On("Get", mock.Anything, int64(6)).Return(nil, application.ErrBoardNotFound)
	boards.On("Delete", mock.Anything, "alice", int64(5)).Return(nil)
	boards.On("Delete", mock.Anything, "alice", int64(6)).Return(application.ErrBoardNotFound)
	boards.On("Update", mock.Anything, "alice", int64(5), "t2", "c2").Return(&entity.Board{ID: 5, Title: "t2", Content: "c2", Author: "alice"}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPost, "/api/boards", `{"title":"t","content":"c"}`, user))
	require.Equal(t, http.StatusCreated, w.Code)
	var got entity.Board
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, "alice", got.Author)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/api/boards/5", "", user))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/api/boards/6", "", user))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/api/boards/abc", "", user))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPut, "/api/boards/5", `{"title":"t2","content":"c2"}`, user))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPut, "/api/boards/5", `{"title":""}`, user))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodDelete, "/api/boards/5", "", user))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodDelete, "/api/boards/6", "", user))
	assert.Equal(t, http.StatusNotFound, w.Code)

	boards.AssertExpectations(t)
}

func TestBoardReindexRequiresAdmin(t *testing.T) {
	tokens, user, admin := testTokens(t)
	boards := &mockBoards{}
	boards.On("Reindex", mock.Anything).Return(3, nil).Once()
	r := boardRouter(boards, tokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPost, "/api/boards/search/reindex", "", user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodPost, "/api/boards/search/reindex", "", admin))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"indexed":3}`, string(decode(t, w).Data))
	boards.AssertExpectations(t)
}

func TestBoardSearch(t *testing.T) {
	tokens, user, _ := testTokens(t)
	boards := &mockBoards{}
	boards.On("SearchBoards", mock.Anything, "go", 10).Return([]entity.BoardHit{{ID: 1, Title: "go"}}, nil)
	r := boardRouter(boards, tokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/api/boards/search?q=go", "", user))
	require.Equal(t, http.StatusOK, w.Code)

	var hits []entity.BoardHit
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &hits))
	assert.Len(t, hits, 1)
}

func chatRouter() *gin.Engine {
	h := NewChatHandler(application.NewChatService(memory.NewRoomRegistry(), nil))
	r := gin.New()
	r.POST("/api/chat/rooms", h.CreateRoom)
	r.GET("/api/chat/rooms", h.ListRooms)
	r.GET("/api/chat/rooms/:roomId", h.GetRoom)
	return r
}

func TestChatRooms(t *testing.T) {
	r := chatRouter()

	create := func(name string) entity.ChatRoom {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat/rooms?name="+name, nil))
		require.Equal(t, http.StatusCreated, w.Code)
		var room entity.ChatRoom
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &room))
		return room
	}
	a := create("lobby")
	b := create("lobby")
	assert.NotEqual(t, a.RoomID, b.RoomID)
	assert.Equal(t, "lobby", a.RoomName)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/rooms", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []entity.ChatRoom
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &rooms))
	assert.Equal(t, []entity.ChatRoom{a, b}, rooms)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/rooms/"+b.RoomID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got entity.ChatRoom
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, b, got)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/rooms/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, bad := range []string{"", "?name=", "?name=%20%20", "?name=" + strings.Repeat("x", 101)} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat/rooms"+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

type fixedCount int

func (f fixedCount) Count() int { return int(f) }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/healthz", Health(fixedCount(3)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","chat_sessions":3}`, w.Body.String())
}
