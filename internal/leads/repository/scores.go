package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeadScore struct {
	LeadID          uuid.UUID
	EngagementScore int
	UrgencyScore    int
	FitScore        int
	OverallScore    int
	ScoreFactors    json.RawMessage
	ScoreVersion    string
	LastCalculated  time.Time
}

type UpsertLeadScoreParams struct {
	LeadID          uuid.UUID
	EngagementScore int
	UrgencyScore    int
	FitScore        int
	OverallScore    int
	ScoreFactors    []byte
	ScoreVersion    string
	CalculatedAt    time.Time
}

// UpsertLeadScore writes the score row for a lead, fully replacing any
// earlier result.
func (r *Repository) UpsertLeadScore(ctx context.Context, params UpsertLeadScoreParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_scores (
			lead_id, engagement_score, urgency_score, fit_score, overall_score,
			score_factors, score_version, last_calculated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lead_id) DO UPDATE SET
			engagement_score = EXCLUDED.engagement_score,
			urgency_score = EXCLUDED.urgency_score,
			fit_score = EXCLUDED.fit_score,
			overall_score = EXCLUDED.overall_score,
			score_factors = EXCLUDED.score_factors,
			score_version = EXCLUDED.score_version,
			last_calculated = EXCLUDED.last_calculated
	`,
		params.LeadID, params.EngagementScore, params.UrgencyScore, params.FitScore, params.OverallScore,
		params.ScoreFactors, params.ScoreVersion, params.CalculatedAt,
	)
	return err
}

const leadScoreColumns = `lead_id, engagement_score, urgency_score, fit_score, overall_score, score_factors, score_version, last_calculated`

func (r *Repository) GetLeadScore(ctx context.Context, leadID uuid.UUID) (LeadScore, error) {
	var s LeadScore
	err := r.pool.QueryRow(ctx, `
		SELECT `+leadScoreColumns+`
		FROM lead_scores
		WHERE lead_id = $1
	`, leadID).Scan(
		&s.LeadID, &s.EngagementScore, &s.UrgencyScore, &s.FitScore, &s.OverallScore,
		&s.ScoreFactors, &s.ScoreVersion, &s.LastCalculated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadScore{}, ErrNotFound
	}
	if err != nil {
		return LeadScore{}, err
	}
	return s, nil
}

// ListLeadScores returns the persisted scores for the batch. Leads that
// were never scored are absent.
func (r *Repository) ListLeadScores(ctx context.Context, leadIDs []uuid.UUID) ([]LeadScore, error) {
	if len(leadIDs) == 0 {
		return []LeadScore{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadScoreColumns+`
		FROM lead_scores
		WHERE lead_id = ANY($1)
	`, leadIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]LeadScore, 0)
	for rows.Next() {
		var s LeadScore
		if err := rows.Scan(
			&s.LeadID, &s.EngagementScore, &s.UrgencyScore, &s.FitScore, &s.OverallScore,
			&s.ScoreFactors, &s.ScoreVersion, &s.LastCalculated,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
