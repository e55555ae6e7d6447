package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	repo "github.com/oksasatya/go-board-chat/internal/domain/repository"
)

var (
	ErrBoardNotFound  = errors.New("board not found")
	ErrBoardInvalid   = errors.New("title and content are required")
	ErrSearchDisabled = errors.New("search is disabled")
)

// BoardSearcher keeps a search index in step with the board table. *search.BoardIndex satisfies it.
type BoardSearcher interface {
	IndexBoard(ctx context.Context, b *entity.Board) error
	DeleteBoard(ctx context.Context, id int64) error
	Search(ctx context.Context, q string, size int) ([]entity.BoardHit, error)
	Reindex(ctx context.Context, boards []*entity.Board) (int, error)
}

type BoardService struct {
	Repo   repo.BoardRepository
	Search BoardSearcher
	Events EventPublisher
	Logger logrus.FieldLogger
}

func NewBoardService(r repo.BoardRepository, searcher BoardSearcher, events EventPublisher, logger logrus.FieldLogger) *BoardService {
	return &BoardService{Repo: r, Search: searcher, Events: events, Logger: logger}
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrBoardNotFound
	}
	return err
}

func (s *BoardService) Create(ctx context.Context, author, title, content string) (*entity.Board, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrBoardInvalid
	}
	b := entity.NewBoard(title, content, author)
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	publishActivity(ctx, s.Events, s.Logger, EventBoardCreated, author, map[string]any{"board_id": b.ID})
	return b, nil
}

func (s *BoardService) Get(ctx context.Context, id int64) (*entity.Board, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (s *BoardService) List(ctx context.Context) ([]*entity.Board, error) {
	return s.Repo.List(ctx)
}

// Update replaces title and content. The author never changes.
func (s *BoardService) Update(ctx context.Context, actor string, id int64, title, content string) (*entity.Board, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrBoardInvalid
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	b.Update(title, content)
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, notFound(err)
	}
	s.index(ctx, b)
	publishActivity(ctx, s.Events, s.Logger, EventBoardUpdated, actor, map[string]any{"board_id": b.ID})
	return b, nil
}

func (s *BoardService) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	if s.Search != nil {
		if err := s.Search.DeleteBoard(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("board_id", id).Warn("search delete failed")
		}
	}
	publishActivity(ctx, s.Events, s.Logger, EventBoardDeleted, actor, map[string]any{"board_id": id})
	return nil
}

// SearchBoards returns matching boards, or nothing when search is disabled.
func (s *BoardService) SearchBoards(ctx context.Context, q string, size int) ([]entity.BoardHit, error) {
	if s.Search == nil || strings.TrimSpace(q) == "" {
		return []entity.BoardHit{}, nil
	}
	return s.Search.Search(ctx, q, size)
}

// Reindex pushes every stored board into the search index.
func (s *BoardService) Reindex(ctx context.Context) (int, error) {
	if s.Search == nil {
		return 0, ErrSearchDisabled
	}
	boards, err := s.Repo.List(ctx)
	if err != nil {
		return 0, err
	}
	return s.Search.Reindex(ctx, boards)
}

func (s *BoardService) index(ctx context.Context, b *entity.Board) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexBoard(ctx, b); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("board_id", b.ID).Warn("es index failed")
	}
}
