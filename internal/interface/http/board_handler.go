package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/application"
	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/internal/interface/middleware"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
	"github.com/oksasatya/go-board-chat/pkg/response"
	"github.com/oksasatya/go-board-chat/pkg/validation"
)

// BoardUseCase is the board API surface. *application.BoardService satisfies it.
type BoardUseCase interface {
	Create(ctx context.Context, author, title, content string) (*entity.Board, error)
	Get(ctx context.Context, id int64) (*entity.Board, error)
	List(ctx context.Context) ([]*entity.Board, error)
	Update(ctx context.Context, actor string, id int64, title, content string) (*entity.Board, error)
	Delete(ctx context.Context, actor string, id int64) error
	SearchBoards(ctx context.Context, q string, size int) ([]entity.BoardHit, error)
	Reindex(ctx context.Context) (int, error)
}

type BoardHandler struct {
	Boards BoardUseCase
	Logger logrus.FieldLogger
}

func NewBoardHandler(boards BoardUseCase, logger logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{Boards: boards, Logger: logger}
}

type boardRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

func boardID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid board id", nil)
		return 0, false
	}
	return id, true
}

func (h *BoardHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, application.ErrBoardNotFound):
		response.Error[any](c, http.StatusNotFound, "board not found", nil)
	case errors.Is(err, application.ErrBoardInvalid):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrSearchDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		helpers.LogError(h.Logger, msg, err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, msg, nil)
	}
}

// Create POST /api/boards
func (h *BoardHandler) Create(c *gin.Context) {
	username, _, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req boardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Boards.Create(c.Request.Context(), username, req.Title, req.Content)
	if err != nil {
		h.fail(c, "create board failed", err)
		return
	}
	response.Success(c, http.StatusCreated, b, "board created", nil)
}

// Get GET /api/boards/:id
func (h *BoardHandler) Get(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}
	b, err := h.Boards.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get board failed", err)
		return
	}
	response.Success(c, http.StatusOK, b, "ok", nil)
}

// List GET /api/boards
func (h *BoardHandler) List(c *gin.Context) {
	boards, err := h.Boards.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list boards failed", err)
		return
	}
	response.Success(c, http.StatusOK, boards, "ok", map[string]any{"count": len(boards)})
}

// Update PUT /api/boards/:id
func (h *BoardHandler) Update(c *gin.Context) {
	username, _, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := boardID(c)
	if !ok {
		return
	}
	var req boardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Boards.Update(c.Request.Context(), username, id, req.Title, req.Content)
	if err != nil {
		h.fail(c, "update board failed", err)
		return
	}
	response.Success(c, http.StatusOK, b, "board updated", nil)
}

// Delete DELETE /api/boards/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	username, _, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := boardID(c)
	if !ok {
		return
	}
	if err := h.Boards.Delete(c.Request.Context(), username, id); err != nil {
		h.fail(c, "delete board failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /api/boards/search?q=&size=
func (h *BoardHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Boards.SearchBoards(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.fail(c, "search failed", err)
		return
	}
	response.Success(c, http.StatusOK, hits, "ok", map[string]any{"count": len(hits)})
}

// Reindex POST /api/boards/search/reindex (ADMIN)
func (h *BoardHandler) Reindex(c *gin.Context) {
	n, err := h.Boards.Reindex(c.Request.Context())
	if err != nil {
		h.fail(c, "reindex failed", err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"indexed": n}, "reindex complete", nil)
}
