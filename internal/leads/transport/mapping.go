package transport

import (
	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/repository"
)

func ToLeadScoreResponse(s repository.LeadScore) LeadScoreResponse {
	return LeadScoreResponse{
		LeadID:          s.LeadID,
		EngagementScore: s.EngagementScore,
		UrgencyScore:    s.UrgencyScore,
		FitScore:        s.FitScore,
		OverallScore:    s.OverallScore,
		Hot:             s.OverallScore >= domain.HotLeadScore,
		ScoreFactors:    s.ScoreFactors,
		ScoreVersion:    s.ScoreVersion,
		LastCalculated:  s.LastCalculated,
	}
}

func ToLeadPredictionResponse(p repository.LeadPrediction) LeadPredictionResponse {
	return LeadPredictionResponse{
		LeadID:                    p.LeadID,
		PredictedCloseProbability: p.PredictedCloseProbability,
		Bucket:                    string(domain.ProbabilityBucket(p.PredictedCloseProbability)),
		PredictedCloseDate:        p.PredictedCloseDate.Format(DateLayout),
		PredictedDealValue:        p.PredictedDealValue,
		PredictedTimeToCloseDays:  p.PredictedTimeToCloseDays,
		PredictionFactors:         p.PredictionFactors,
		LastUpdated:               p.LastUpdated,
	}
}

func ToPipelineForecastResponse(f repository.PipelineForecast) PipelineForecastResponse {
	return PipelineForecastResponse{
		ID:                     f.ID,
		ForecastDate:           f.ForecastDate.Format(DateLayout),
		ForecastPeriod:         f.ForecastPeriod,
		PredictedRevenue:       f.PredictedRevenue,
		ConfidenceIntervalLow:  f.ConfidenceIntervalLow,
		ConfidenceIntervalHigh: f.ConfidenceIntervalHigh,
		PredictedCloses:        f.PredictedCloses,
		PredictedCloseRate:     f.PredictedCloseRate,
		Factors:                f.Factors,
		GeneratedAt:            f.GeneratedAt,
	}
}
