// Package container wires infrastructure clients into services once at
// startup so the router modules can pick what they need.
package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-board-chat/config"
	"github.com/oksasatya/go-board-chat/internal/application"
	"github.com/oksasatya/go-board-chat/internal/infrastructure/broker"
	"github.com/oksasatya/go-board-chat/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-board-chat/internal/infrastructure/postgres"
	"github.com/oksasatya/go-board-chat/internal/infrastructure/search"
	chatws "github.com/oksasatya/go-board-chat/internal/interface/ws"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
)

// Infra holds the external clients built by main. Redis, Events and Search
// are optional and may be nil.
type Infra struct {
	DB     pginfra.DB
	Redis  redis.UniversalClient
	Events *helpers.RabbitPublisher
	Search *search.BoardIndex
}

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	DB    pginfra.DB
	Redis redis.UniversalClient

	Tokens *helpers.TokenService
	Hasher helpers.PasswordHasher

	Broker   *broker.TopicBroker
	Rooms    *memory.RoomRegistry
	Sessions *chatws.Manager

	Auth   *application.AuthService
	Boards *application.BoardService
	Chat   *application.ChatService
}

func New(cfg *config.Config, logger *logrus.Logger, infra Infra) *Container {
	// Optional clients stay untyped nil so the services see "disabled".
	var events application.EventPublisher
	if infra.Events != nil {
		events = infra.Events
	}
	var searcher application.BoardSearcher
	if infra.Search != nil {
		searcher = infra.Search
	}

	tokens := helpers.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	hasher := helpers.NewBcryptHasher(bcrypt.DefaultCost)

	users := pginfra.NewUserRepository(infra.DB)
	boards := pginfra.NewBoardRepository(infra.DB)

	topics := broker.NewTopicBroker(logger.WithField("component", "broker"))
	rooms := memory.NewRoomRegistry()
	chat := application.NewChatService(rooms, topics)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		DB:       infra.DB,
		Redis:    infra.Redis,
		Tokens:   tokens,
		Hasher:   hasher,
		Broker:   topics,
		Rooms:    rooms,
		Sessions: chatws.NewManager(topics, chat, cfg.ChatMaxSessions, cfg.ChatSendBuffer, logger.WithField("component", "chat")),
		Auth:     application.NewAuthService(users, hasher, tokens, events, logger),
		Boards:   application.NewBoardService(boards, searcher, events, logger),
		Chat:     chat,
	}
}

// RateLimitStore returns the Redis client for the rate limiters, or nil
// when Redis is not configured.
func (c *Container) RateLimitStore() redis.Scripter {
	if c.Redis == nil {
		return nil
	}
	return c.Redis
}
