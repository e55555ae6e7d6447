package repository

import (
	"context"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
)

// BoardRepository persists boards. Missing ids yield ErrNotFound.
type BoardRepository interface {
	Create(ctx context.Context, b *entity.Board) error
	GetByID(ctx context.Context, id int64) (*entity.Board, error)
	List(ctx context.Context) ([]*entity.Board, error)
	Update(ctx context.Context, b *entity.Board) error
	Delete(ctx context.Context, id int64) error
}
