package main // Entry point package

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/threetier/backend/internal/config"
	"github.com/threetier/backend/internal/database"
	"github.com/threetier/backend/internal/handler"
	"github.com/threetier/backend/internal/logger"
	"github.com/threetier/backend/internal/middleware"
	"github.com/threetier/backend/internal/queue"
	"github.com/threetier/backend/internal/router"
	"github.com/threetier/backend/internal/server"
)

func main() {
	// A missing .env is normal in containers; real env vars win over the file.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.WithError(err).Warn("falling back to info level")
	}

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = config.NewRedisClient()
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var pinger database.Pinger
	if cfg.ReadinessDB {
		db, err := database.Open(cfg)
		if err != nil {
			log.WithError(err).Warn("readiness database check disabled")
		} else {
			defer func(db *sql.DB) { _ = db.Close() }(db)
			pinger = db
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger("/health", "/ready"))

	router.RegisterRoutes(e, router.Handlers{
		Data:      handler.NewDataHandler(cfg),
		Ready:     handler.NewReadyHandler(pinger, 0),
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb),
		Cache:     middleware.NewRedisCache(cfg.Cache, rdb),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, e, cfg, queue.NewPublisher(cfg.Queue)); err != nil {
		log.WithError(err).Error("server stopped")
		stop()
		os.Exit(1)
	}
}
