package repository

import (
	"context"

	"leadengine_backend/internal/leads/domain"
)

// ScoreMetrics aggregates the persisted score table for the dashboard.
type ScoreMetrics struct {
	ScoredLeads         int
	HotLeads            int
	AverageOverallScore float64
	ActiveLeads         int
}

// GetScoreMetrics returns score KPIs over active (non-terminal) leads.
func (r *Repository) GetScoreMetrics(ctx context.Context, hotThreshold int) (ScoreMetrics, error) {
	var metrics ScoreMetrics
	err := r.pool.QueryRow(ctx, `
		WITH active AS (
			SELECT id
			FROM leads
			WHERE pipeline_status <> ALL($2::text[])
		)
		SELECT
			COUNT(s.lead_id) AS scored_leads,
			COUNT(s.lead_id) FILTER (WHERE s.overall_score >= $1) AS hot_leads,
			COALESCE(AVG(s.overall_score), 0)::float8 AS average_overall_score,
			(SELECT COUNT(*) FROM active) AS active_leads
		FROM lead_scores s
		JOIN active a ON a.id = s.lead_id
	`, hotThreshold, domain.TerminalStatuses).Scan(
		&metrics.ScoredLeads,
		&metrics.HotLeads,
		&metrics.AverageOverallScore,
		&metrics.ActiveLeads,
	)
	if err != nil {
		return ScoreMetrics{}, err
	}
	return metrics, nil
}
