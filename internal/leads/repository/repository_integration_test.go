//go:build database

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// crmSchema mirrors the CRM-owned tables the engine reads.
const crmSchema = `
CREATE TABLE leads (
	id UUID PRIMARY KEY,
	pipeline_status TEXT NOT NULL,
	industry TEXT,
	has_website BOOLEAN,
	google_rating NUMERIC(2,1),
	google_review_count INT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE demo_views (lead_id UUID NOT NULL, created_at TIMESTAMPTZ NOT NULL);
CREATE TABLE email_events (lead_id UUID NOT NULL, event_type TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);
CREATE TABLE activities (related_to_id UUID NOT NULL, type TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);
`

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "secret",
			"POSTGRES_DB":       "leads",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		DatabaseURL: fmt.Sprintf("postgres://postgres:secret@%s:%s/leads?sslmode=disable", host, port.Port()),
	}
	require.NoError(t, db.RunMigrations(cfg))

	pool, err := db.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, crmSchema)
	require.NoError(t, err)
	return pool
}

func insertLead(t *testing.T, pool *pgxpool.Pool, status string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO leads (id, pipeline_status, industry, has_website, google_rating, google_review_count)
		VALUES ($1, $2, 'saas', NULL, 4.5, 12)
	`, id, status)
	require.NoError(t, err)
	return id
}

func TestRepositoryAgainstPostgres(t *testing.T) {
	pool := startPostgres(t)
	repo := New(pool)
	ctx := context.Background()

	active := insertLead(t, pool, domain.StatusDemoEngaged)
	won := insertLead(t, pool, domain.StatusCustomerWon)
	insertLead(t, pool, domain.StatusLostClosed)

	t.Run("active leads exclude won and lost", func(t *testing.T) {
		leads, err := repo.ListActiveLeads(ctx)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, active, leads[0].ID)
		assert.False(t, leads[0].HasWebsite)
		require.NotNil(t, leads[0].GoogleRating)
		assert.InDelta(t, 4.5, *leads[0].GoogleRating, 1e-9)

		byID, err := repo.ListLeadsByIDs(ctx, []uuid.UUID{active, won})
		require.NoError(t, err)
		assert.Len(t, byID, 1)
	})

	t.Run("interactions are filtered by type", func(t *testing.T) {
		now := time.Now().UTC()
		_, err := pool.Exec(ctx, `INSERT INTO email_events VALUES ($1, 'open', $2), ($1, 'bounce', $2), ($1, 'reply', $2)`, active, now)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `INSERT INTO activities VALUES ($1, 'call_outbound', $2), ($1, 'note', $2)`, active, now)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `INSERT INTO demo_views VALUES ($1, $2)`, active, now)
		require.NoError(t, err)

		emails, err := repo.ListEmailEvents(ctx, []uuid.UUID{active})
		require.NoError(t, err)
		assert.Len(t, emails, 2)

		activities, err := repo.ListActivities(ctx, []uuid.UUID{active})
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, ActivityCallOutbound, activities[0].Type)

		demos, err := repo.ListDemoViews(ctx, []uuid.UUID{active})
		require.NoError(t, err)
		assert.Len(t, demos, 1)
	})

	t.Run("score upsert replaces the row", func(t *testing.T) {
		for _, overall := range []int{40, 85} {
			require.NoError(t, repo.UpsertLeadScore(ctx, UpsertLeadScoreParams{
				LeadID:          active,
				EngagementScore: overall,
				UrgencyScore:    overall,
				FitScore:        overall,
				OverallScore:    overall,
				ScoreFactors:    []byte(`{"signals":{}}`),
				ScoreVersion:    "test",
				CalculatedAt:    time.Now().UTC(),
			}))
		}

		score, err := repo.GetLeadScore(ctx, active)
		require.NoError(t, err)
		assert.Equal(t, 85, score.OverallScore)

		_, err = repo.GetLeadScore(ctx, won)
		assert.ErrorIs(t, err, ErrNotFound)

		metrics, err := repo.GetScoreMetrics(ctx, domain.HotLeadScore)
		require.NoError(t, err)
		assert.Equal(t, 1, metrics.ActiveLeads)
		assert.Equal(t, 1, metrics.ScoredLeads)
		assert.Equal(t, 1, metrics.HotLeads)
	})

	t.Run("prediction upsert", func(t *testing.T) {
		require.NoError(t, repo.UpsertLeadPrediction(ctx, UpsertLeadPredictionParams{
			LeadID:                    active,
			PredictedCloseProbability: 0.4321,
			PredictedCloseDate:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			PredictedDealValue:        1500,
			PredictedTimeToCloseDays:  14,
			PredictionFactors:         []byte(`{}`),
			UpdatedAt:                 time.Now().UTC(),
		}))

		p, err := repo.GetLeadPrediction(ctx, active)
		require.NoError(t, err)
		assert.InDelta(t, 0.4321, p.PredictedCloseProbability, 1e-9)
		assert.Equal(t, 14, p.PredictedTimeToCloseDays)
	})

	t.Run("forecast snapshots append", func(t *testing.T) {
		_, err := repo.GetLatestPipelineForecast(ctx)
		assert.ErrorIs(t, err, ErrNotFound)

		for i, revenue := range []float64{1000, 2000} {
			_, err := repo.InsertPipelineForecast(ctx, InsertPipelineForecastParams{
				ForecastDate:           time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
				ForecastPeriod:         "month",
				PredictedRevenue:       revenue,
				ConfidenceIntervalLow:  revenue * 0.7,
				ConfidenceIntervalHigh: revenue * 1.3,
				PredictedCloses:        i,
				PredictedCloseRate:     0.5,
				Factors:                []byte(`{}`),
				GeneratedAt:            time.Now().UTC().Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
		}

		latest, err := repo.GetLatestPipelineForecast(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 2000, latest.PredictedRevenue, 1e-9)

		history, err := repo.ListPipelineForecasts(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("engine settings", func(t *testing.T) {
		_, err := repo.GetEngineSetting(ctx, SettingLeadScoringEnabled)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repo.SetEngineSetting(ctx, SettingLeadScoringEnabled, "false"))
		require.NoError(t, repo.SetEngineSetting(ctx, SettingLeadScoringEnabled, "true"))

		value, err := repo.GetEngineSetting(ctx, SettingLeadScoringEnabled)
		require.NoError(t, err)
		assert.Equal(t, "true", value)
	})
}
