package scoring

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

// RunOptions configures one scoring run. Enabled is resolved by the caller
// once per run; a disabled run does no I/O.
type RunOptions struct {
	LeadIDs []uuid.UUID
	Enabled bool
}

// ScoreRunSummary reports what a scoring run did. It is logged and
// published, never persisted.
type ScoreRunSummary struct {
	RunID        string      `json:"runId"`
	Skipped      bool        `json:"skipped"`
	Processed    int         `json:"processed"`
	Persisted    int         `json:"persisted"`
	Failed       int         `json:"failed"`
	HotLeads     int         `json:"hotLeads"`
	HotLeadIDs   []uuid.UUID `json:"hotLeadIds"`
	ScoreVersion string      `json:"scoreVersion"`
	StartedAt    time.Time   `json:"startedAt"`
	FinishedAt   time.Time   `json:"finishedAt"`
	Results      []Result    `json:"-"`
}

// Service runs batch lead scoring.
type Service struct {
	signals SignalCollector
	writer  repository.ScoreWriter
	bus     events.Bus
	log     *logger.Logger
	now     func() time.Time
}

// New creates a new scoring service. bus may be nil.
func New(collector SignalCollector, writer repository.ScoreWriter, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		signals: collector,
		writer:  writer,
		bus:     bus,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run scores the requested leads, or every active lead when opts.LeadIDs is
// empty. A failed row write is logged and counted; a failed fetch aborts
// the run before anything is written.
func (s *Service) Run(ctx context.Context, opts RunOptions) (ScoreRunSummary, error) {
	startedAt := s.now()
	summary := ScoreRunSummary{
		RunID:        uuid.NewString(),
		ScoreVersion: scoreVersion,
		StartedAt:    startedAt,
		HotLeadIDs:   []uuid.UUID{},
	}
	ctx = logger.ContextWithRunID(ctx, summary.RunID)
	log := s.log.WithContext(ctx)

	if !opts.Enabled {
		summary.Skipped = true
		summary.FinishedAt = startedAt
		log.ScoreRun(0, 0, 0, 0, true)
		return summary, nil
	}

	bundles, err := s.signals.Collect(ctx, opts.LeadIDs, startedAt)
	if err != nil {
		return ScoreRunSummary{}, err
	}

	summary.Results = make([]Result, 0, len(bundles))
	for _, bundle := range bundles {
		result := Score(bundle)
		summary.Processed++
		summary.Results = append(summary.Results, result)
		if result.Hot {
			summary.HotLeads++
			summary.HotLeadIDs = append(summary.HotLeadIDs, result.LeadID)
		}

		if err := s.persist(ctx, result, startedAt); err != nil {
			summary.Failed++
			log.RowPersistFailed("lead_scores", result.LeadID.String(), err)
			continue
		}
		summary.Persisted++
	}

	summary.FinishedAt = s.now()
	log.ScoreRun(summary.Processed, summary.Persisted, summary.Failed, summary.HotLeads, false)
	s.publish(ctx, summary)
	return summary, nil
}

// ScoreLead scores a single lead on demand. When scoring is disabled it
// returns an empty Result marked Skipped and no error, like Run.
func (s *Service) ScoreLead(ctx context.Context, leadID uuid.UUID, enabled bool) (Result, error) {
	if !enabled {
		s.log.WithContext(ctx).ScoreRun(0, 0, 0, 0, true)
		return Result{LeadID: leadID, Skipped: true}, nil
	}
	summary, err := s.Run(ctx, RunOptions{LeadIDs: []uuid.UUID{leadID}, Enabled: true})
	if err != nil {
		return Result{}, err
	}
	if len(summary.Results) == 0 {
		return Result{}, apperr.NotFound("lead not found or already closed").WithOp("scoring.ScoreLead")
	}
	if summary.Failed > 0 {
		return Result{}, apperr.Internal("failed to persist lead score").WithOp("scoring.ScoreLead")
	}
	return summary.Results[0], nil
}

func (s *Service) persist(ctx context.Context, result Result, calculatedAt time.Time) error {
	factorsJSON, err := json.Marshal(result.Factors)
	if err != nil {
		return err
	}
	return s.writer.UpsertLeadScore(ctx, repository.UpsertLeadScoreParams{
		LeadID:          result.LeadID,
		EngagementScore: result.Engagement,
		UrgencyScore:    result.Urgency,
		FitScore:        result.Fit,
		OverallScore:    result.Overall,
		ScoreFactors:    factorsJSON,
		ScoreVersion:    scoreVersion,
		CalculatedAt:    calculatedAt,
	})
}

func (s *Service) publish(ctx context.Context, summary ScoreRunSummary) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.LeadScoresRecalculated{
		BaseEvent:    events.NewBaseEvent(),
		Processed:    summary.Processed,
		Persisted:    summary.Persisted,
		Failed:       summary.Failed,
		HotLeads:     summary.HotLeads,
		ScoreVersion: summary.ScoreVersion,
	})
	if summary.HotLeads > 0 {
		s.bus.Publish(ctx, events.HotLeadsDetected{
			BaseEvent: events.NewBaseEvent(),
			LeadIDs:   summary.HotLeadIDs,
		})
	}
}
