package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradeflow/assignment-portal/internal/api"
	"github.com/gradeflow/assignment-portal/internal/api/handler"
	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/core/service"
	"github.com/gradeflow/assignment-portal/internal/gateway"
	boltstore "github.com/gradeflow/assignment-portal/internal/infrastructure/db/bolt"
	"github.com/gradeflow/assignment-portal/internal/infrastructure/db/memory"
	mongostore "github.com/gradeflow/assignment-portal/internal/infrastructure/db/mongo"
	redisstore "github.com/gradeflow/assignment-portal/internal/infrastructure/db/redis"
	"github.com/gradeflow/assignment-portal/internal/pkg/config"
	"github.com/gradeflow/assignment-portal/pkg/logger"
	"github.com/gradeflow/assignment-portal/pkg/tracing"
)

// @title        Assignment Portal API
// @version      1.0
// @description  Session, question and grading workflows for the assignment submission portal.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.Tracing.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init failed")
	}

	var (
		checks  []handler.HealthCheck
		closers []func(context.Context) error
	)

	users, err := openUserStore(ctx, cfg, &checks, &closers)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.UserStore).Msg("user store unavailable")
	}
	storage, err := openLocalStorage(ctx, cfg, &checks, &closers)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.SessionStorage).Msg("local storage unavailable")
	}

	gw := gateway.New(cfg.API.BaseURL, logger.Component("gateway"), gateway.WithTimeout(cfg.API.Timeout))
	bus := service.NewCompletionBus(logger.Component("completion_bus"))
	sessions := service.NewSessionManager(users, storage, service.SessionOptions{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.SessionTTL,
		Latency:        cfg.Auth.Latency,
		ProfileLatency: cfg.Auth.ProfileLatency,
	}, logger.Component("session"))

	e := api.NewRouter(api.Deps{
		JWTSecret:    cfg.JWTSecret,
		Logger:       log,
		Sessions:     sessions,
		Board:        service.NewQuestionBoardService(gw, logger.Component("board")),
		Answers:      service.NewAnswerService(gw, storage, bus, logger.Component("answers")),
		Submissions:  service.NewSubmissionService(gw, logger.Component("submissions")),
		Questions:    service.NewQuestionService(gw, logger.Component("questions")),
		Grading:      service.NewGradingService(gw, logger.Component("grading")),
		Bus:          bus,
		HealthChecks: checks,
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("api", cfg.API.BaseURL).
			Str("user_store", cfg.Storage.UserStore).
			Str("session_storage", cfg.Storage.SessionStorage).
			Msg("assignment portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](shutdownCtx); err != nil {
			log.Error().Err(err).Msg("close dependency")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}

func openUserStore(ctx context.Context, cfg *config.Config, checks *[]handler.HealthCheck, closers *[]func(context.Context) error) (ports.UserRepository, error) {
	if cfg.Storage.UserStore != "mongo" {
		return memory.NewUserRepository(domain.DemoUsers()...), nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.Tracing.ServiceName,
	})
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, client.Disconnect)
	*checks = append(*checks, handler.HealthCheck{
		Name:  "mongodb",
		Check: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	})

	repo := mongostore.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := repo.Seed(ctx, domain.DemoUsers()); err != nil {
		return nil, err
	}
	return repo, nil
}

func openLocalStorage(ctx context.Context, cfg *config.Config, checks *[]handler.HealthCheck, closers *[]func(context.Context) error) (ports.StorageProvider, error) {
	switch cfg.Storage.SessionStorage {
	case "bolt":
		store, err := boltstore.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func(context.Context) error { return store.Close() })
		*checks = append(*checks, handler.HealthCheck{
			Name:  "bolt",
			Check: func(context.Context) error { return store.Ping() },
		})
		return store, nil

	case "redis":
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func(context.Context) error { return client.Close() })
		*checks = append(*checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		// Sessions expire with their tokens; completed sets never expire.
		return redisstore.NewLocalStorage(client,
			redisstore.WithNamespaceTTL(service.SessionNamespacePrefix, cfg.SessionTTL),
		), nil

	default:
		return memory.NewLocalStorage(), nil
	}
}
