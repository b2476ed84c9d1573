package forecast

import (
	"math"
	"time"

	"leadengine_backend/internal/leads/domain"
)

const (
	// PeriodMonth is the only forecast period produced today.
	PeriodMonth = "month"

	confidenceLow  = 0.7
	confidenceHigh = 1.3
)

// PipelineForecast is a point-in-time forecast over all predicted leads.
type PipelineForecast struct {
	ForecastDate       time.Time       `json:"forecastDate"`
	Period             string          `json:"forecastPeriod"`
	PredictedRevenue   float64         `json:"predictedRevenue"`
	ConfidenceLow      float64         `json:"confidenceIntervalLow"`
	ConfidenceHigh     float64         `json:"confidenceIntervalHigh"`
	PredictedCloses    int             `json:"predictedCloses"`
	PredictedCloseRate float64         `json:"predictedCloseRate"`
	Factors            PipelineFactors `json:"factors"`
	GeneratedAt        time.Time       `json:"generatedAt"`
}

// PipelineFactors is the bucket breakdown stored with each snapshot.
type PipelineFactors struct {
	HotLeads           int     `json:"hotLeads"`
	WarmLeads          int     `json:"warmLeads"`
	ColdLeads          int     `json:"coldLeads"`
	TotalLeads         int     `json:"totalLeads"`
	RevenueLeads       int     `json:"revenueLeads"`
	AverageProbability float64 `json:"averageProbability"`
}

// Aggregate rolls predictions into a pipeline forecast. Only warm-or-better
// leads contribute revenue; leads at or above the close threshold count as
// predicted closes. The band is a fixed +/-30% around revenue.
func Aggregate(predictions []LeadPrediction, now time.Time) PipelineForecast {
	var (
		revenue float64
		sumP    float64
		factors PipelineFactors
		closes  int
	)

	for _, p := range predictions {
		sumP += p.Probability
		switch domain.ProbabilityBucket(p.Probability) {
		case domain.BucketHot:
			factors.HotLeads++
		case domain.BucketWarm:
			factors.WarmLeads++
		default:
			factors.ColdLeads++
		}
		if p.Probability >= domain.RevenueProbability {
			revenue += p.DealValue * p.Probability
			factors.RevenueLeads++
		}
		if p.Probability >= domain.CloseProbability {
			closes++
		}
	}

	factors.TotalLeads = len(predictions)
	closeRate := 0.0
	if factors.TotalLeads > 0 {
		factors.AverageProbability = roundTo(sumP/float64(factors.TotalLeads), 4)
		closeRate = roundTo(float64(closes)/float64(factors.TotalLeads), 4)
	}

	revenue = roundTo(revenue, 2)
	return PipelineForecast{
		ForecastDate:       utcDate(now),
		Period:             PeriodMonth,
		PredictedRevenue:   revenue,
		ConfidenceLow:      roundTo(revenue*confidenceLow, 2),
		ConfidenceHigh:     roundTo(revenue*confidenceHigh, 2),
		PredictedCloses:    closes,
		PredictedCloseRate: closeRate,
		Factors:            factors,
		GeneratedAt:        now.UTC(),
	}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
