// Package exports writes forecast runs to Parquet archives using
// github.com/parquet-go/parquet-go.
package exports

import (
	"time"

	"leadengine_backend/internal/leads/forecast"
)

// PredictionRecord is one archived lead prediction. The run-level pipeline
// figures are repeated on every row so a single file is self-describing.
type PredictionRecord struct {
	// RunID identifies the forecast run that produced the row
	RunID string `parquet:"run_id,snappy,dict"`

	// ForecastDate is the UTC day of the run
	ForecastDate time.Time `parquet:"forecast_date,snappy"`

	LeadID          string    `parquet:"lead_id,snappy"`
	Industry        string    `parquet:"industry,snappy,dict"`
	Probability     float64   `parquet:"predicted_close_probability,snappy"`
	Bucket          string    `parquet:"bucket,snappy,dict"`
	CloseDate       time.Time `parquet:"predicted_close_date,snappy"`
	DealValue       float64   `parquet:"predicted_deal_value,snappy"`
	TimeToCloseDays int32     `parquet:"predicted_time_to_close_days,snappy"`

	// OverallScore is null when the lead had no persisted score
	OverallScore *int32 `parquet:"overall_score,optional,snappy"`

	PipelineRevenue float64 `parquet:"pipeline_predicted_revenue,snappy"`
	PipelineLow     float64 `parquet:"pipeline_confidence_low,snappy"`
	PipelineHigh    float64 `parquet:"pipeline_confidence_high,snappy"`
	PipelineCloses  int32   `parquet:"pipeline_predicted_closes,snappy"`
}

// ConvertPredictions flattens a run into archive rows.
func ConvertPredictions(runID string, f forecast.PipelineForecast, predictions []forecast.LeadPrediction) []PredictionRecord {
	records := make([]PredictionRecord, 0, len(predictions))
	for _, p := range predictions {
		rec := PredictionRecord{
			RunID:           runID,
			ForecastDate:    f.ForecastDate,
			LeadID:          p.LeadID.String(),
			Industry:        p.Factors.Industry,
			Probability:     forecast.StoredProbability(p.Probability),
			Bucket:          string(p.Bucket),
			CloseDate:       p.CloseDate,
			DealValue:       p.DealValue,
			TimeToCloseDays: int32(p.TimeToCloseDays),
			PipelineRevenue: f.PredictedRevenue,
			PipelineLow:     f.ConfidenceLow,
			PipelineHigh:    f.ConfidenceHigh,
			PipelineCloses:  int32(f.PredictedCloses),
		}
		if p.Factors.OverallScore != nil {
			score := int32(*p.Factors.OverallScore)
			rec.OverallScore = &score
		}
		records = append(records, rec)
	}
	return records
}
