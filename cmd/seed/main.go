package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-board-chat/config"
	"github.com/oksasatya/go-board-chat/internal/application"
	"github.com/oksasatya/go-board-chat/internal/domain/entity"
	pginfra "github.com/oksasatya/go-board-chat/internal/infrastructure/postgres"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	username := flag.String("username", "admin", "username to create")
	password := flag.String("password", "password123", "plain password")
	roleFlag := flag.String("role", string(entity.RoleAdmin), "USER or ADMIN")
	flag.Parse()

	role, err := entity.ParseRole(*roleFlag)
	if err != nil {
		log.Fatalf("invalid role: %v", err)
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	auth := application.NewAuthService(
		pginfra.NewUserRepository(pool),
		helpers.NewBcryptHasher(0),
		helpers.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		nil,
		logger,
	)

	u, err := auth.Register(ctx, *username, *password, role)
	switch {
	case errors.Is(err, application.ErrUserExists):
		fmt.Printf("user %s already exists, skipped\n", *username)
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%d username=%s role=%s password=%s\n", u.ID, u.Username, u.Role, *password)
	}
}
