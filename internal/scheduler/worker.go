package scheduler

import (
	"context"
	"fmt"

	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/internal/leads/scoring"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ScoreRunner executes a scoring batch.
type ScoreRunner interface {
	Run(ctx context.Context, opts scoring.RunOptions) (scoring.ScoreRunSummary, error)
}

// ForecastRunner executes a forecast batch.
type ForecastRunner interface {
	Run(ctx context.Context, opts forecast.RunOptions) (forecast.ForecastRunSummary, error)
}

// EnableFlag resolves the scoring switch once per run.
type EnableFlag interface {
	ScoringEnabled(ctx context.Context) bool
}

// Jobs bundles the engine entry points driven by the scheduler.
type Jobs struct {
	Scoring  ScoreRunner
	Forecast ForecastRunner
	Flag     EnableFlag
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	jobs   Jobs
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, jobs Jobs, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(jobs, log)
	w.server = server
	return w, nil
}

func newWorker(jobs Jobs, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:  mux,
		jobs: jobs,
		log:  log,
	}

	mux.HandleFunc(TaskScoreLeads, w.handleScoreLeads)
	mux.HandleFunc(TaskGenerateForecast, w.handleGenerateForecast)

	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleScoreLeads(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoreLeadsPayload(task)
	if err != nil {
		return fmt.Errorf("parse score payload: %v: %w", err, asynq.SkipRetry)
	}

	leadIDs := make([]uuid.UUID, 0, len(payload.LeadIDs))
	for _, raw := range payload.LeadIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid lead id %q: %w", raw, asynq.SkipRetry)
		}
		leadIDs = append(leadIDs, id)
	}

	_, err = w.jobs.Scoring.Run(ctx, scoring.RunOptions{
		LeadIDs: leadIDs,
		Enabled: w.jobs.Flag.ScoringEnabled(ctx),
	})
	return retryable(err)
}

func (w *Worker) handleGenerateForecast(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseGenerateForecastPayload(task); err != nil {
		return fmt.Errorf("parse forecast payload: %v: %w", err, asynq.SkipRetry)
	}

	_, err := w.jobs.Forecast.Run(ctx, forecast.RunOptions{
		Enabled: w.jobs.Flag.ScoringEnabled(ctx),
	})
	return retryable(err)
}

// retryable lets asynq retry upstream outages and drops everything else.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	if apperr.Is(err, apperr.KindUnavailable) {
		return err
	}
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}
