package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/quickserve/pos-system/internal/api"
	"github.com/quickserve/pos-system/internal/api/metrics"
	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/service"
	"github.com/quickserve/pos-system/internal/infrastructure/config"
	mongodb "github.com/quickserve/pos-system/internal/infrastructure/db/mongo"
	redisdb "github.com/quickserve/pos-system/internal/infrastructure/db/redis"
	"github.com/quickserve/pos-system/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- User store ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	// --- Session store ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Services ---
	userRepo := mongodb.NewUserRepository(db)
	sessionStore := redisdb.NewSessionStore(rdb)
	sessions := service.NewSessionService(userRepo, sessionStore, log)
	users := service.NewUserService(userRepo, sessions, log)

	// Resume the previous session, if one survived a restart within the
	// timeout window.
	if err := sessions.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("session restore failed")
	}
	if sessions.State() == domain.StateAuthenticated {
		metrics.SessionRestoresTotal.WithLabelValues("restored").Inc()
	} else {
		metrics.SessionRestoresTotal.WithLabelValues("none").Inc()
	}

	// Prime the user list cache; the first admin screen should not have to
	// wait for a mutation to see data.
	if err := users.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("initial user list load failed")
	}

	e := api.NewRouter(sessions, users, db, rdb, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("pos terminal service started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("pos terminal service stopped")
}
