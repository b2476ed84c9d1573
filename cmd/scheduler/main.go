package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadengine_backend/internal/adapters"
	"leadengine_backend/internal/adapters/storage"
	"leadengine_backend/internal/events"
	"leadengine_backend/internal/exports"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	leadsModule, err := leads.NewModule(pool, eventBus, validator.New(), cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	leadsModule.RegisterHandlers(eventBus)

	if cfg.IsKafkaEnabled() {
		publisher, err := adapters.NewKafkaEventPublisher(cfg, log)
		if err != nil {
			log.Error("failed to initialize kafka publisher", "error", err)
		} else {
			publisher.Register(eventBus)
			defer func() {
				eventBus.Wait()
				_ = publisher.Close()
			}()
		}
	}

	if cfg.IsMinIOEnabled() {
		if archive, err := initForecastArchive(ctx, cfg, log); err != nil {
			log.Error("forecast archive disabled", "error", err)
		} else {
			leadsModule.SetArchiver(archive)
		}
	}

	jobs := scheduler.Jobs{
		Scoring:  leadsModule.ScoringService(),
		Forecast: leadsModule.ForecastService(),
		Flag:     leadsModule.Settings(),
	}

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; running engine on in-process ticker", "interval", cfg.GetEngineRunInterval())
		scheduler.NewTickerRunner(jobs, log, cfg.GetEngineRunInterval()).Run(ctx)
		return
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, jobs, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func initForecastArchive(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*exports.ForecastArchive, error) {
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		return nil, err
	}

	var archive *exports.ForecastArchive
	err = withRetry(ctx, log, "ensure forecast archive bucket", 5, 2*time.Second, func() error {
		a, err := exports.NewForecastArchive(ctx, storageSvc, cfg.GetMinioBucketForecastArchive(), log)
		if err != nil {
			return err
		}
		archive = a
		return nil
	})
	return archive, err
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
