package scheduler

import (
	"context"
	"time"

	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/internal/leads/scoring"
	"leadengine_backend/platform/logger"
)

const defaultEngineRunInterval = 5 * time.Minute

// TickerRunner performs scoring then forecasting in-process on a fixed
// interval. Used when no Redis is configured.
type TickerRunner struct {
	jobs     Jobs
	log      *logger.Logger
	interval time.Duration
}

func NewTickerRunner(jobs Jobs, log *logger.Logger, interval time.Duration) *TickerRunner {
	if interval <= 0 {
		interval = defaultEngineRunInterval
	}
	return &TickerRunner{
		jobs:     jobs,
		log:      log,
		interval: interval,
	}
}

func (r *TickerRunner) Run(ctx context.Context) {
	if r == nil {
		return
	}

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *TickerRunner) tick(ctx context.Context) {
	enabled := r.jobs.Flag.ScoringEnabled(ctx)

	if _, err := r.jobs.Scoring.Run(ctx, scoring.RunOptions{Enabled: enabled}); err != nil {
		r.log.Warn("scheduled scoring run failed", "error", err)
		return
	}

	if _, err := r.jobs.Forecast.Run(ctx, forecast.RunOptions{Enabled: enabled}); err != nil {
		r.log.Warn("scheduled forecast run failed", "error", err)
	}
}
