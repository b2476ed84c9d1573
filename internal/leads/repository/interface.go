package repository

import (
	"context"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// SignalReader provides the set-oriented reads behind a feature bundle.
type SignalReader interface {
	ListActiveLeads(ctx context.Context) ([]Lead, error)
	ListLeadsByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error)
	ListDemoViews(ctx context.Context, leadIDs []uuid.UUID) ([]DemoView, error)
	ListEmailEvents(ctx context.Context, leadIDs []uuid.UUID) ([]EmailEvent, error)
	ListActivities(ctx context.Context, leadIDs []uuid.UUID) ([]Activity, error)
}

// ScoreReader provides read access to persisted lead scores.
type ScoreReader interface {
	GetLeadScore(ctx context.Context, leadID uuid.UUID) (LeadScore, error)
	ListLeadScores(ctx context.Context, leadIDs []uuid.UUID) ([]LeadScore, error)
}

// ScoreWriter persists lead scores.
type ScoreWriter interface {
	UpsertLeadScore(ctx context.Context, params UpsertLeadScoreParams) error
}

// PredictionReader provides read access to per-lead predictions.
type PredictionReader interface {
	GetLeadPrediction(ctx context.Context, leadID uuid.UUID) (LeadPrediction, error)
}

// PredictionWriter persists per-lead predictions.
type PredictionWriter interface {
	UpsertLeadPrediction(ctx context.Context, params UpsertLeadPredictionParams) error
}

// ForecastReader provides read access to pipeline forecast snapshots.
type ForecastReader interface {
	GetLatestPipelineForecast(ctx context.Context) (PipelineForecast, error)
	ListPipelineForecasts(ctx context.Context, limit int) ([]PipelineForecast, error)
}

// ForecastWriter appends pipeline forecast snapshots.
type ForecastWriter interface {
	InsertPipelineForecast(ctx context.Context, params InsertPipelineForecastParams) (uuid.UUID, error)
}

// SettingsStore reads and writes engine runtime settings.
type SettingsStore interface {
	GetEngineSetting(ctx context.Context, key string) (string, error)
	SetEngineSetting(ctx context.Context, key, value string) error
}

// MetricsReader provides access to score KPI metrics.
type MetricsReader interface {
	GetScoreMetrics(ctx context.Context, hotThreshold int) (ScoreMetrics, error)
}

// Compile-time check that Repository implements all interfaces.
var (
	_ SignalReader     = (*Repository)(nil)
	_ ScoreReader      = (*Repository)(nil)
	_ ScoreWriter      = (*Repository)(nil)
	_ PredictionReader = (*Repository)(nil)
	_ PredictionWriter = (*Repository)(nil)
	_ ForecastReader   = (*Repository)(nil)
	_ ForecastWriter   = (*Repository)(nil)
	_ SettingsStore    = (*Repository)(nil)
	_ MetricsReader    = (*Repository)(nil)
)
