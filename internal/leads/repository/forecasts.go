package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PipelineForecast is one append-only forecast snapshot.
type PipelineForecast struct {
	ID                     uuid.UUID
	ForecastDate           time.Time
	ForecastPeriod         string
	PredictedRevenue       float64
	ConfidenceIntervalLow  float64
	ConfidenceIntervalHigh float64
	PredictedCloses        int
	PredictedCloseRate     float64
	Factors                json.RawMessage
	GeneratedAt            time.Time
}

type InsertPipelineForecastParams struct {
	ForecastDate           time.Time
	ForecastPeriod         string
	PredictedRevenue       float64
	ConfidenceIntervalLow  float64
	ConfidenceIntervalHigh float64
	PredictedCloses        int
	PredictedCloseRate     float64
	Factors                []byte
	GeneratedAt            time.Time
}

// InsertPipelineForecast appends a snapshot. Snapshots are never updated.
func (r *Repository) InsertPipelineForecast(ctx context.Context, params InsertPipelineForecastParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pipeline_forecasts (
			forecast_date, forecast_period, predicted_revenue, confidence_interval_low,
			confidence_interval_high, predicted_closes, predicted_close_rate, factors, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		params.ForecastDate, params.ForecastPeriod, params.PredictedRevenue, params.ConfidenceIntervalLow,
		params.ConfidenceIntervalHigh, params.PredictedCloses, params.PredictedCloseRate, params.Factors, params.GeneratedAt,
	).Scan(&id)
	return id, err
}

const pipelineForecastSelect = `
	SELECT id, forecast_date, forecast_period, predicted_revenue::float8, confidence_interval_low::float8,
		confidence_interval_high::float8, predicted_closes, predicted_close_rate::float8, factors, generated_at
	FROM pipeline_forecasts
`

func (r *Repository) GetLatestPipelineForecast(ctx context.Context) (PipelineForecast, error) {
	var f PipelineForecast
	err := r.pool.QueryRow(ctx, pipelineForecastSelect+`
		ORDER BY generated_at DESC
		LIMIT 1
	`).Scan(
		&f.ID, &f.ForecastDate, &f.ForecastPeriod, &f.PredictedRevenue, &f.ConfidenceIntervalLow,
		&f.ConfidenceIntervalHigh, &f.PredictedCloses, &f.PredictedCloseRate, &f.Factors, &f.GeneratedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PipelineForecast{}, ErrNotFound
	}
	if err != nil {
		return PipelineForecast{}, err
	}
	return f, nil
}

// ListPipelineForecasts returns the newest snapshots first.
func (r *Repository) ListPipelineForecasts(ctx context.Context, limit int) ([]PipelineForecast, error) {
	rows, err := r.pool.Query(ctx, pipelineForecastSelect+`
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PipelineForecast, 0)
	for rows.Next() {
		var f PipelineForecast
		if err := rows.Scan(
			&f.ID, &f.ForecastDate, &f.ForecastPeriod, &f.PredictedRevenue, &f.ConfidenceIntervalLow,
			&f.ConfidenceIntervalHigh, &f.PredictedCloses, &f.PredictedCloseRate, &f.Factors, &f.GeneratedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
