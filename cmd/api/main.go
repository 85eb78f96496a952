package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leadstack/crm-api/internal/api"
	"github.com/leadstack/crm-api/internal/core/ports"
	"github.com/leadstack/crm-api/internal/infrastructure/bus"
	"github.com/leadstack/crm-api/internal/infrastructure/config"
	"github.com/leadstack/crm-api/internal/infrastructure/db/postgres"
	"github.com/leadstack/crm-api/internal/infrastructure/mail"
	"github.com/leadstack/crm-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres ---
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	// --- Event bus ---
	var (
		eventBus ports.EventBus
		rdb      *redis.Client
	)
	switch cfg.Bus.Driver {
	case "redis":
		rdb, err = bus.ConnectRedis(ctx, bus.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		eventBus = bus.NewRedisBus(rdb, logger.Component("bus"))
	default:
		eventBus = bus.NewMemoryBus(logger.Component("bus"))
	}
	defer eventBus.Close()

	// --- Outbound email ---
	mailer := mail.NewSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger.Component("mail"))

	e := api.NewRouter(db, rdb, eventBus, mailer, cfg)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("bus", cfg.Bus.Driver).Msg("api listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
