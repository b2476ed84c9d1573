package forecast

import (
	"context"
	"encoding/json"
	"time"

	"leadengine_backend/internal/events"
	"leadengine_backend/internal/leads/repository"
	"leadengine_backend/internal/leads/signals"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/logger"

	"github.com/google/uuid"
)

// SignalCollector builds feature bundles for a batch of leads.
type SignalCollector interface {
	Collect(ctx context.Context, leadIDs []uuid.UUID, now time.Time) ([]signals.FeatureBundle, error)
}

// ScoreLister loads persisted scores for a batch of leads.
type ScoreLister interface {
	ListLeadScores(ctx context.Context, leadIDs []uuid.UUID) ([]repository.LeadScore, error)
}

// Archiver stores a copy of a finished run for later accuracy audits and
// returns where it was written.
type Archiver interface {
	Archive(ctx context.Context, runID string, forecast PipelineForecast, predictions []LeadPrediction) (string, error)
}

// RunOptions configures one forecast run. Enabled is the resolved engine
// flag; when false the run is a successful no-op.
type RunOptions struct {
	Enabled bool
}

// ForecastRunSummary reports what a forecast run did.
type ForecastRunSummary struct {
	RunID            string            `json:"runId"`
	Skipped          bool              `json:"skipped"`
	Processed        int               `json:"processed"`
	Persisted        int               `json:"persisted"`
	Failed           int               `json:"failed"`
	Unscored         int               `json:"unscored"`
	PredictedRevenue float64           `json:"predictedRevenue"`
	PredictedCloses  int               `json:"predictedCloses"`
	Forecast         *PipelineForecast `json:"forecast,omitempty"`
	ForecastID       *uuid.UUID        `json:"forecastId,omitempty"`
	SnapshotSaved    bool              `json:"snapshotSaved"`
	ArchiveObject    string            `json:"archiveObject,omitempty"`
	StartedAt        time.Time         `json:"startedAt"`
	FinishedAt       time.Time         `json:"finishedAt"`
	Predictions      []LeadPrediction  `json:"-"`
}

// Service runs batch forecasting.
type Service struct {
	signals     SignalCollector
	scores      ScoreLister
	predictions repository.PredictionWriter
	forecasts   repository.ForecastWriter
	priors      *Priors
	archiver    Archiver
	bus         events.Bus
	log         *logger.Logger
	now         func() time.Time
}

// New creates a forecast service. bus may be nil.
func New(collector SignalCollector, scores ScoreLister, predictions repository.PredictionWriter, forecasts repository.ForecastWriter, priors *Priors, bus events.Bus, log *logger.Logger) *Service {
	if priors == nil {
		priors = DefaultPriors()
	}
	return &Service{
		signals:     collector,
		scores:      scores,
		predictions: predictions,
		forecasts:   forecasts,
		priors:      priors,
		bus:         bus,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetArchiver enables the per-run archive export.
func (s *Service) SetArchiver(a Archiver) {
	s.archiver = a
}

// Run predicts every active lead, persists the predictions and appends a
// pipeline snapshot. Per-row and snapshot write failures are logged and
// reported in the summary; fetch failures abort the run.
func (s *Service) Run(ctx context.Context, opts RunOptions) (ForecastRunSummary, error) {
	startedAt := s.now()
	summary := ForecastRunSummary{RunID: uuid.NewString(), StartedAt: startedAt}
	ctx = logger.ContextWithRunID(ctx, summary.RunID)
	log := s.log.WithContext(ctx)

	if !opts.Enabled {
		summary.Skipped = true
		summary.FinishedAt = startedAt
		log.ForecastRun(0, 0, 0, 0, 0, true)
		return summary, nil
	}

	bundles, err := s.signals.Collect(ctx, nil, startedAt)
	if err != nil {
		return ForecastRunSummary{}, err
	}

	snapshots, err := s.loadScores(ctx, bundles)
	if err != nil {
		return ForecastRunSummary{}, err
	}

	summary.Predictions = make([]LeadPrediction, 0, len(bundles))
	for _, bundle := range bundles {
		score, ok := snapshots[bundle.LeadID]
		if !ok {
			summary.Unscored++
		}
		prediction := Predict(bundle, score, s.priors, startedAt)
		summary.Processed++
		summary.Predictions = append(summary.Predictions, prediction)

		if err := s.persist(ctx, prediction, startedAt); err != nil {
			summary.Failed++
			log.RowPersistFailed("lead_predictions", prediction.LeadID.String(), err)
			continue
		}
		summary.Persisted++
	}

	pipeline := Aggregate(summary.Predictions, startedAt)
	summary.Forecast = &pipeline
	summary.PredictedRevenue = pipeline.PredictedRevenue
	summary.PredictedCloses = pipeline.PredictedCloses

	if id, err := s.insertSnapshot(ctx, pipeline); err != nil {
		log.DatabaseError("insert_pipeline_forecast", err)
	} else {
		summary.ForecastID = &id
		summary.SnapshotSaved = true
	}

	if s.archiver != nil {
		object, err := s.archiver.Archive(ctx, summary.RunID, pipeline, summary.Predictions)
		if err != nil {
			log.Error("forecast archive failed", "error", err)
		} else {
			summary.ArchiveObject = object
		}
	}

	summary.FinishedAt = s.now()
	log.ForecastRun(summary.Processed, summary.Persisted, summary.Failed, summary.PredictedCloses, summary.PredictedRevenue, false)
	s.publish(ctx, summary)
	return summary, nil
}

// loadScores maps lead id to its persisted score. Leads without a score are
// absent from the map so Predict skips the score multiplier for them.
func (s *Service) loadScores(ctx context.Context, bundles []signals.FeatureBundle) (map[uuid.UUID]*ScoreSnapshot, error) {
	out := make(map[uuid.UUID]*ScoreSnapshot, len(bundles))
	if len(bundles) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(bundles))
	for _, b := range bundles {
		ids = append(ids, b.LeadID)
	}
	rows, err := s.scores.ListLeadScores(ctx, ids)
	if err != nil {
		return nil, apperr.Unavailable("failed to load lead scores", err).WithOp("forecast.Run")
	}
	for _, row := range rows {
		out[row.LeadID] = &ScoreSnapshot{Overall: row.OverallScore, Engagement: row.EngagementScore}
	}
	return out, nil
}

func (s *Service) persist(ctx context.Context, p LeadPrediction, updatedAt time.Time) error {
	factorsJSON, err := json.Marshal(p.Factors)
	if err != nil {
		return err
	}
	return s.predictions.UpsertLeadPrediction(ctx, repository.UpsertLeadPredictionParams{
		LeadID:                    p.LeadID,
		PredictedCloseProbability: StoredProbability(p.Probability),
		PredictedCloseDate:        p.CloseDate,
		PredictedDealValue:        p.DealValue,
		PredictedTimeToCloseDays:  p.TimeToCloseDays,
		PredictionFactors:         factorsJSON,
		UpdatedAt:                 updatedAt,
	})
}

func (s *Service) insertSnapshot(ctx context.Context, f PipelineForecast) (uuid.UUID, error) {
	factorsJSON, err := json.Marshal(f.Factors)
	if err != nil {
		return uuid.Nil, err
	}
	return s.forecasts.InsertPipelineForecast(ctx, repository.InsertPipelineForecastParams{
		ForecastDate:           f.ForecastDate,
		ForecastPeriod:         f.Period,
		PredictedRevenue:       f.PredictedRevenue,
		ConfidenceIntervalLow:  f.ConfidenceLow,
		ConfidenceIntervalHigh: f.ConfidenceHigh,
		PredictedCloses:        f.PredictedCloses,
		PredictedCloseRate:     f.PredictedCloseRate,
		Factors:                factorsJSON,
		GeneratedAt:            f.GeneratedAt,
	})
}

func (s *Service) publish(ctx context.Context, summary ForecastRunSummary) {
	if s.bus == nil || summary.Forecast == nil {
		return
	}
	f := summary.Forecast
	s.bus.Publish(ctx, events.PipelineForecastGenerated{
		BaseEvent:          events.NewBaseEvent(),
		ForecastDate:       f.ForecastDate,
		PredictedRevenue:   f.PredictedRevenue,
		ConfidenceLow:      f.ConfidenceLow,
		ConfidenceHigh:     f.ConfidenceHigh,
		PredictedCloses:    f.PredictedCloses,
		PredictedCloseRate: f.PredictedCloseRate,
		TotalLeads:         f.Factors.TotalLeads,
		SnapshotSaved:      summary.SnapshotSaved,
		ArchiveObject:      summary.ArchiveObject,
	})
}
