package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	repo "github.com/oksasatya/go-board-chat/internal/domain/repository"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)

// TokenIssuer mints bearer tokens. *helpers.TokenService satisfies it.
type TokenIssuer interface {
	CreateToken(subject string, role entity.Role) (string, time.Time, error)
}

type AuthService struct {
	Users  repo.UserRepository
	Hasher helpers.PasswordHasher
	Tokens TokenIssuer
	Events EventPublisher
	Logger logrus.FieldLogger

	dummyOnce sync.Once
	dummy     string
}

func NewAuthService(users repo.UserRepository, hasher helpers.PasswordHasher, tokens TokenIssuer, events EventPublisher, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, Hasher: hasher, Tokens: tokens, Events: events, Logger: logger}
}

// dummyDigest is compared against when the user does not exist so both
// failure branches spend one hash comparison.
func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		d, err := s.Hasher.Hash("no-such-user-placeholder")
		if err == nil {
			s.dummy = d
		}
	})
	return s.dummy
}

// Login verifies username/password and returns a bearer token ("Bearer " + jwt).
// It fails with ErrUserNotFound or ErrInvalidCredentials; callers facing
// clients should not reveal which.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			_ = s.Hasher.Compare(s.dummyDigest(), password)
			publishActivity(ctx, s.Events, s.Logger, EventLoginFailed, username, map[string]any{"reason": "unknown_user"})
			return "", ErrUserNotFound
		}
		return "", oops.Code("LOGIN_LOOKUP_FAILED").With("username", username).Wrap(err)
	}

	if !s.Hasher.Compare(u.Password, password) {
		publishActivity(ctx, s.Events, s.Logger, EventLoginFailed, username, map[string]any{"reason": "bad_password"})
		return "", ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.CreateToken(u.Username, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", u.Username).Error("generate token failed")
		}
		return "", oops.Code("LOGIN_TOKEN_FAILED").With("username", username).Wrap(err)
	}

	publishActivity(ctx, s.Events, s.Logger, EventLoginSucceeded, u.Username, map[string]any{
		"role":       string(u.Role),
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
	return token, nil
}

// Register stores a new user with a hashed password. It backs the seed command.
func (s *AuthService) Register(ctx context.Context, username, password string, role entity.Role) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, oops.Code("REGISTER_INVALID").Errorf("username cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("REGISTER_INVALID").With("role", string(role)).Errorf("invalid role %q", role)
	}
	digest, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: username, Password: digest, Role: role}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}
