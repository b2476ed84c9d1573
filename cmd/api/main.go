package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadengine_backend/internal/adapters"
	"leadengine_backend/internal/adapters/storage"
	"leadengine_backend/internal/events"
	"leadengine_backend/internal/exports"
	apphttp "leadengine_backend/internal/http"
	"leadengine_backend/internal/http/router"
	"leadengine_backend/internal/leads"
	"leadengine_backend/internal/scheduler"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/db"
	"leadengine_backend/platform/logger"
	"leadengine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.GetJWTAccessSecret() == "" {
		panic("JWT_ACCESS_SECRET is required")
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	leadsModule.RegisterHandlers(eventBus)

	if closeKafka := initKafkaPublisher(cfg, eventBus, log); closeKafka != nil {
		defer closeKafka()
	}

	if archive := initForecastArchive(ctx, cfg, log); archive != nil {
		leadsModule.SetArchiver(archive)
	}

	if taskClient := initTaskClient(cfg, log); taskClient != nil {
		defer func() { _ = taskClient.Close() }()
		leadsModule.SetTaskEnqueuer(taskClient)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initTaskClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; async scoring runs disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}
	return client
}

func initKafkaPublisher(cfg config.KafkaConfig, bus events.Bus, log *logger.Logger) func() {
	if !cfg.IsKafkaEnabled() {
		log.Info("KAFKA_BROKERS not configured; event publishing disabled")
		return nil
	}

	publisher, err := adapters.NewKafkaEventPublisher(cfg, log)
	if err != nil {
		log.Error("failed to initialize kafka publisher", "error", err)
		return nil
	}
	publisher.Register(bus)
	log.Info("kafka event publisher initialized", "topic", cfg.GetKafkaEventsTopic())

	return func() { _ = publisher.Close() }
}

func initForecastArchive(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) *exports.ForecastArchive {
	if !cfg.IsMinIOEnabled() {
		log.Info("MINIO_ENDPOINT not configured; forecast archive disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		return nil
	}

	var archive *exports.ForecastArchive
	if err := withRetry(ctx, log, "ensure forecast archive bucket", 5, 2*time.Second, func() error {
		a, err := exports.NewForecastArchive(ctx, storageSvc, cfg.GetMinioBucketForecastArchive(), log)
		if err != nil {
			return err
		}
		archive = a
		return nil
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketForecastArchive())
		return nil
	}

	log.Info("forecast archive initialized", "bucket", cfg.GetMinioBucketForecastArchive())
	return archive
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
