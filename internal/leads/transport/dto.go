package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RunScoringRequest struct {
	LeadIDs []string `json:"leadIds,omitempty" validate:"omitempty,max=1000,dive,uuid"`
}

type UpdateEngineSettingsRequest struct {
	ScoringEnabled *bool `json:"scoringEnabled" validate:"required"`
}

type ListForecastsQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

type ArchiveLinkQuery struct {
	Object string `form:"object" validate:"required,max=255"`
}

// Response DTOs

type LeadScoreResponse struct {
	LeadID          uuid.UUID       `json:"leadId"`
	EngagementScore int             `json:"engagementScore"`
	UrgencyScore    int             `json:"urgencyScore"`
	FitScore        int             `json:"fitScore"`
	OverallScore    int             `json:"overallScore"`
	Hot             bool            `json:"hot"`
	ScoreFactors    json.RawMessage `json:"scoreFactors,omitempty"`
	ScoreVersion    string          `json:"scoreVersion"`
	LastCalculated  time.Time       `json:"lastCalculated"`
}

type LeadPredictionResponse struct {
	LeadID                    uuid.UUID       `json:"leadId"`
	PredictedCloseProbability float64         `json:"predictedCloseProbability"`
	Bucket                    string          `json:"bucket"`
	PredictedCloseDate        string          `json:"predictedCloseDate"`
	PredictedDealValue        float64         `json:"predictedDealValue"`
	PredictedTimeToCloseDays  int             `json:"predictedTimeToCloseDays"`
	PredictionFactors         json.RawMessage `json:"predictionFactors,omitempty"`
	LastUpdated               time.Time       `json:"lastUpdated"`
}

type PipelineForecastResponse struct {
	ID                     uuid.UUID       `json:"id"`
	ForecastDate           string          `json:"forecastDate"`
	ForecastPeriod         string          `json:"forecastPeriod"`
	PredictedRevenue       float64         `json:"predictedRevenue"`
	ConfidenceIntervalLow  float64         `json:"confidenceIntervalLow"`
	ConfidenceIntervalHigh float64         `json:"confidenceIntervalHigh"`
	PredictedCloses        int             `json:"predictedCloses"`
	PredictedCloseRate     float64         `json:"predictedCloseRate"`
	Factors                json.RawMessage `json:"factors,omitempty"`
	GeneratedAt            time.Time       `json:"generatedAt"`
}

type PipelineForecastListResponse struct {
	Items []PipelineForecastResponse `json:"items"`
}

type EngineSettingsResponse struct {
	ScoringEnabled bool `json:"scoringEnabled"`
}

type EnqueueRunResponse struct {
	TaskID string `json:"taskId"`
}

type ScoreMetricsResponse struct {
	ActiveLeads         int     `json:"activeLeads"`
	ScoredLeads         int     `json:"scoredLeads"`
	HotLeads            int     `json:"hotLeads"`
	AverageOverallScore float64 `json:"averageOverallScore"`
}

// DateLayout is used for date-only fields.
const DateLayout = "2006-01-02"
