package scheduler

import (
	"context"
	"fmt"

	"leadengine_backend/platform/config"
	"leadengine_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const triggerSchedule = "schedule"

// Periodic registers the cron entries that enqueue engine runs.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
	entries   map[string]string
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	p := &Periodic{
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{}),
		log:       log,
		entries:   make(map[string]string, 2),
	}

	queue := asynq.Queue(queueName(cfg))

	scoreTask, err := NewScoreLeadsTask(ScoreLeadsPayload{Trigger: triggerSchedule})
	if err != nil {
		return nil, err
	}
	if err := p.register(cfg.GetScoringCron(), scoreTask, queue); err != nil {
		return nil, err
	}

	forecastTask, err := NewGenerateForecastTask(GenerateForecastPayload{Trigger: triggerSchedule})
	if err != nil {
		return nil, err
	}
	if err := p.register(cfg.GetForecastCron(), forecastTask, queue); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Periodic) register(spec string, task *asynq.Task, opts ...asynq.Option) error {
	if spec == "" {
		p.log.Info("periodic task disabled", "task", task.Type())
		return nil
	}
	entryID, err := p.scheduler.Register(spec, task, opts...)
	if err != nil {
		return fmt.Errorf("register %s (%s): %w", task.Type(), spec, err)
	}
	p.entries[task.Type()] = entryID
	p.log.Info("periodic task registered", "task", task.Type(), "cron", spec, "entry_id", entryID)
	return nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}

	<-ctx.Done()
	p.scheduler.Shutdown()
}
