package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/config"
	"github.com/oksasatya/go-board-chat/internal/container"
	pginfra "github.com/oksasatya/go-board-chat/internal/infrastructure/postgres"
	"github.com/oksasatya/go-board-chat/internal/infrastructure/search"
	"github.com/oksasatya/go-board-chat/internal/metrics"
	"github.com/oksasatya/go-board-chat/internal/router"
	"github.com/oksasatya/go-board-chat/pkg/helpers"
	"github.com/oksasatya/go-board-chat/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Postgres
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	infra := container.Infra{DB: pool}

	// Redis backs the rate limiters; without it they let everything through.
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		logger.WithError(err).Warn("redis unavailable, rate limiting disabled")
	} else {
		infra.Redis = rdb
	}

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable, activity events disabled", err, nil)
		} else {
			defer pub.Close()
			infra.Events = pub
		}
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogError(logger, "elasticsearch unavailable, board search disabled", err, nil)
		} else {
			infra.Search = search.NewBoardIndex(es, cfg.ESBoardsIndex, logger)
		}
	}

	if cfg.MetricsEnabled {
		metrics.Register(prometheus.DefaultRegisterer)
	}

	c := container.New(cfg, logger, infra)

	r, err := router.NewEngine(c)
	if err != nil {
		log.Fatalf("invalid router config: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		helpers.LogInfo(logger, "server starting", logrus.Fields{"port": cfg.Port, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	// Hijacked WebSocket connections are not tracked by http.Server.
	if err := c.Sessions.CloseAll(ctxShutdown); err != nil {
		logger.WithError(err).Warn("chat sessions did not close in time")
	}
	logger.Info("server exited properly")
}
