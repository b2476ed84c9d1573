// Package leads provides the lead scoring and forecasting bounded context.
// This file defines the module that wires the engine and registers routes.
package leads

import (
	"context"
	"log/slog"

	"leadengine_backend/internal/events"
	apphttp "leadengine_backend/internal/http"
	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/internal/leads/handler"
	"leadengine_backend/internal/leads/repository"
	"leadengine_backend/internal/leads/scoring"
	"leadengine_backend/internal/leads/settings"
	"leadengine_backend/internal/leads/signals"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/logger"
	"leadengine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lead engine module implementing http.Module.
type Module struct {
	repo     *repository.Repository
	scoring  *scoring.Service
	forecast *forecast.Service
	settings *settings.Resolver
	handler  *handler.Handler
	log      *logger.Logger
}

// NewModule creates the engine services over a shared repository. It fails
// only when the configured industry priors file cannot be loaded.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.EngineConfig, log *logger.Logger) (*Module, error) {
	priors, err := forecast.LoadPriors(cfg.GetIndustryPriorsFile())
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	aggregator := signals.NewAggregator(repo)
	scoringSvc := scoring.New(aggregator, repo, eventBus, log)
	forecastSvc := forecast.New(aggregator, repo, repo, repo, priors, eventBus, log)
	resolver := settings.NewResolver(cfg, repo, log)

	return &Module{
		repo:     repo,
		scoring:  scoringSvc,
		forecast: forecastSvc,
		settings: resolver,
		handler:  handler.New(scoringSvc, forecastSvc, resolver, repo, nil, val),
		log:      log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ScoringService returns the scoring entry point for the scheduler and CLI.
func (m *Module) ScoringService() *scoring.Service {
	return m.scoring
}

// ForecastService returns the forecast entry point for the scheduler and CLI.
func (m *Module) ForecastService() *forecast.Service {
	return m.forecast
}

// Settings returns the enable flag resolver.
func (m *Module) Settings() *settings.Resolver {
	return m.settings
}

// SetTaskEnqueuer enables POST /lead-scoring/runs/async.
func (m *Module) SetTaskEnqueuer(enqueuer handler.ScoreTaskEnqueuer) {
	m.handler.SetEnqueuer(enqueuer)
}

// SetArchiver enables the per-run forecast archive, and archive download
// links when the archiver can sign them.
func (m *Module) SetArchiver(archiver forecast.Archiver) {
	m.forecast.SetArchiver(archiver)
	if linker, ok := archiver.(handler.ArchiveLinker); ok {
		m.handler.SetArchiveLinker(linker)
	}
}

// RegisterHandlers subscribes the hot lead alert to the bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.HotLeadsDetected{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.HotLeadsDetected)
		if !ok {
			return nil
		}
		ids := make([]string, 0, len(e.LeadIDs))
		for _, id := range e.LeadIDs {
			ids = append(ids, id.String())
		}
		m.log.WithContext(ctx).Warn("hot leads detected",
			slog.Int("count", len(ids)),
			slog.Any("lead_ids", ids),
		)
		return nil
	}))
}

// RegisterRoutes mounts engine routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected, ctx.Admin, ctx.RunLimiter.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
