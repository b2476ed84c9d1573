package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeadPrediction struct {
	LeadID                    uuid.UUID
	PredictedCloseProbability float64
	PredictedCloseDate        time.Time
	PredictedDealValue        float64
	PredictedTimeToCloseDays  int
	PredictionFactors         json.RawMessage
	LastUpdated               time.Time
}

type UpsertLeadPredictionParams struct {
	LeadID                    uuid.UUID
	PredictedCloseProbability float64
	PredictedCloseDate        time.Time
	PredictedDealValue        float64
	PredictedTimeToCloseDays  int
	PredictionFactors         []byte
	UpdatedAt                 time.Time
}

func (r *Repository) UpsertLeadPrediction(ctx context.Context, params UpsertLeadPredictionParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_predictions (
			lead_id, predicted_close_probability, predicted_close_date, predicted_deal_value,
			predicted_time_to_close_days, prediction_factors, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (lead_id) DO UPDATE SET
			predicted_close_probability = EXCLUDED.predicted_close_probability,
			predicted_close_date = EXCLUDED.predicted_close_date,
			predicted_deal_value = EXCLUDED.predicted_deal_value,
			predicted_time_to_close_days = EXCLUDED.predicted_time_to_close_days,
			prediction_factors = EXCLUDED.prediction_factors,
			last_updated = EXCLUDED.last_updated
	`,
		params.LeadID, params.PredictedCloseProbability, params.PredictedCloseDate, params.PredictedDealValue,
		params.PredictedTimeToCloseDays, params.PredictionFactors, params.UpdatedAt,
	)
	return err
}

func (r *Repository) GetLeadPrediction(ctx context.Context, leadID uuid.UUID) (LeadPrediction, error) {
	var p LeadPrediction
	err := r.pool.QueryRow(ctx, `
		SELECT lead_id, predicted_close_probability::float8, predicted_close_date, predicted_deal_value::float8,
			predicted_time_to_close_days, prediction_factors, last_updated
		FROM lead_predictions
		WHERE lead_id = $1
	`, leadID).Scan(
		&p.LeadID, &p.PredictedCloseProbability, &p.PredictedCloseDate, &p.PredictedDealValue,
		&p.PredictedTimeToCloseDays, &p.PredictionFactors, &p.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadPrediction{}, ErrNotFound
	}
	if err != nil {
		return LeadPrediction{}, err
	}
	return p, nil
}
