package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	"github.com/oksasatya/go-board-chat/internal/domain/repository"
)

type BoardRepository struct {
	db DB
}

func NewBoardRepository(db DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, b *entity.Board) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO boards (title, content, author)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Content, b.Author)

	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return oops.Code("BOARD_INSERT_FAILED").With("author", b.Author).Wrap(err)
	}
	return nil
}

func (r *BoardRepository) GetByID(ctx context.Context, id int64) (*entity.Board, error) {
	b := &entity.Board{}

	row := r.db.QueryRow(ctx, `
		SELECT id, title, content, author, created_at, updated_at
		FROM boards
		WHERE id = $1
	`, id)

	if err := row.Scan(&b.ID, &b.Title, &b.Content, &b.Author, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("BOARD_NOT_FOUND").With("board_id", id).Wrap(repository.ErrNotFound)
		}
		return nil, oops.Code("BOARD_QUERY_FAILED").With("board_id", id).Wrap(err)
	}
	return b, nil
}

// List returns boards newest first.
func (r *BoardRepository) List(ctx context.Context) ([]*entity.Board, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, content, author, created_at, updated_at
		FROM boards
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, oops.Code("BOARD_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	boards := make([]*entity.Board, 0)
	for rows.Next() {
		b := &entity.Board{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.Author, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, oops.Code("BOARD_SCAN_FAILED").Wrap(err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("BOARD_QUERY_FAILED").Wrap(err)
	}
	return boards, nil
}

func (r *BoardRepository) Update(ctx context.Context, b *entity.Board) error {
	row := r.db.QueryRow(ctx, `
		UPDATE boards
		SET title = $1, content = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, b.Title, b.Content, b.ID)

	if err := row.Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return oops.Code("BOARD_NOT_FOUND").With("board_id", b.ID).Wrap(repository.ErrNotFound)
		}
		return oops.Code("BOARD_UPDATE_FAILED").With("board_id", b.ID).Wrap(err)
	}
	return nil
}

func (r *BoardRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return oops.Code("BOARD_DELETE_FAILED").With("board_id", id).Wrap(err)
	}
	if res.RowsAffected() == 0 {
		return oops.Code("BOARD_NOT_FOUND").With("board_id", id).Wrap(repository.ErrNotFound)
	}
	return nil
}

var _ repository.BoardRepository = (*BoardRepository)(nil)
