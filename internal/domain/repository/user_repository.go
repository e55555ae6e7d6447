package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the credential store operations.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
}

// ErrConflict is returned when a unique key (username) is already taken.
var ErrConflict = errors.New("already exists")
