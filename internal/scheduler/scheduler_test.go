package scheduler

import (
	"context"
	"errors"
	"testing"

	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/internal/leads/scoring"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScoring struct {
	calls []scoring.RunOptions
	err   error
}

func (f *fakeScoring) Run(_ context.Context, opts scoring.RunOptions) (scoring.ScoreRunSummary, error) {
	f.calls = append(f.calls, opts)
	return scoring.ScoreRunSummary{}, f.err
}

type fakeForecast struct {
	calls []forecast.RunOptions
	err   error
}

func (f *fakeForecast) Run(_ context.Context, opts forecast.RunOptions) (forecast.ForecastRunSummary, error) {
	f.calls = append(f.calls, opts)
	return forecast.ForecastRunSummary{}, f.err
}

type staticFlag bool

func (f staticFlag) ScoringEnabled(context.Context) bool { return bool(f) }

func TestScoreLeadsPayloadRoundTrip(t *testing.T) {
	task, err := NewScoreLeadsTask(ScoreLeadsPayload{LeadIDs: []string{"a", "b"}, Trigger: "manual"})
	require.NoError(t, err)
	assert.Equal(t, TaskScoreLeads, task.Type())

	payload, err := ParseScoreLeadsPayload(task)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, payload.LeadIDs)
	assert.Equal(t, "manual", payload.Trigger)

	empty, err := ParseScoreLeadsPayload(asynq.NewTask(TaskScoreLeads, nil))
	require.NoError(t, err)
	assert.Empty(t, empty.LeadIDs)
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	require.NoError(t, err)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)

	_, err = redisClientOpt("://bad", false)
	assert.Error(t, err)
}

func TestClientEnqueueLeadScoring(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), AsynqQueueName: "lead-engine"}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	taskID, err := client.EnqueueLeadScoring(context.Background(), []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pending, err := rdb.LLen(context.Background(), "asynq:{lead-engine}:pending").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(&config.Config{})
	assert.Error(t, err)
}

func TestHandleScoreLeadsPassesIDsAndFlag(t *testing.T) {
	scores := &fakeScoring{}
	w := newWorker(Jobs{Scoring: scores, Forecast: &fakeForecast{}, Flag: staticFlag(false)}, logger.Discard())

	id := uuid.New()
	task, err := NewScoreLeadsTask(ScoreLeadsPayload{LeadIDs: []string{id.String()}})
	require.NoError(t, err)

	require.NoError(t, w.handleScoreLeads(context.Background(), task))
	require.Len(t, scores.calls, 1)
	assert.Equal(t, []uuid.UUID{id}, scores.calls[0].LeadIDs)
	assert.False(t, scores.calls[0].Enabled)
}

func TestHandleScoreLeadsRejectsBadID(t *testing.T) {
	scores := &fakeScoring{}
	w := newWorker(Jobs{Scoring: scores, Forecast: &fakeForecast{}, Flag: staticFlag(true)}, logger.Discard())

	task, err := NewScoreLeadsTask(ScoreLeadsPayload{LeadIDs: []string{"not-a-uuid"}})
	require.NoError(t, err)

	err = w.handleScoreLeads(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, scores.calls)
}

func TestHandleGenerateForecastRetriesOnlyUnavailable(t *testing.T) {
	forecasts := &fakeForecast{err: apperr.Unavailable("fetch failed", errors.New("conn refused"))}
	w := newWorker(Jobs{Scoring: &fakeScoring{}, Forecast: forecasts, Flag: staticFlag(true)}, logger.Discard())

	task, err := NewGenerateForecastTask(GenerateForecastPayload{})
	require.NoError(t, err)

	err = w.handleGenerateForecast(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, forecasts.calls[0].Enabled)

	forecasts.err = errors.New("boom")
	err = w.handleGenerateForecast(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestTickerRunnerSkipsForecastWhenScoringFails(t *testing.T) {
	scores := &fakeScoring{err: apperr.Unavailable("fetch failed", errors.New("down"))}
	forecasts := &fakeForecast{}
	r := NewTickerRunner(Jobs{Scoring: scores, Forecast: forecasts, Flag: staticFlag(true)}, logger.Discard(), 0)

	r.tick(context.Background())
	assert.Len(t, scores.calls, 1)
	assert.Empty(t, forecasts.calls)

	scores.err = nil
	r.tick(context.Background())
	assert.Len(t, forecasts.calls, 1)
	assert.Equal(t, defaultEngineRunInterval, r.interval)
}
