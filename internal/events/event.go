// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadengine_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Scoring Events
// =============================================================================

// LeadScoresRecalculated is published after every non-skipped scoring run.
type LeadScoresRecalculated struct {
	BaseEvent
	Processed    int    `json:"processed"`
	Persisted    int    `json:"persisted"`
	Failed       int    `json:"failed"`
	HotLeads     int    `json:"hotLeads"`
	ScoreVersion string `json:"scoreVersion"`
}

func (e LeadScoresRecalculated) EventName() string { return "leads.scores.recalculated" }

// HotLeadsDetected is published when a scoring run finds leads at or above
// the hot threshold. Sales alerting subscribes to it.
type HotLeadsDetected struct {
	BaseEvent
	LeadIDs []uuid.UUID `json:"leadIds"`
}

func (e HotLeadsDetected) EventName() string { return "leads.hot_detected" }

// =============================================================================
// Forecast Events
// =============================================================================

// PipelineForecastGenerated is published after every non-skipped forecast run.
type PipelineForecastGenerated struct {
	BaseEvent
	ForecastDate       time.Time `json:"forecastDate"`
	PredictedRevenue   float64   `json:"predictedRevenue"`
	ConfidenceLow      float64   `json:"confidenceLow"`
	ConfidenceHigh     float64   `json:"confidenceHigh"`
	PredictedCloses    int       `json:"predictedCloses"`
	PredictedCloseRate float64   `json:"predictedCloseRate"`
	TotalLeads         int       `json:"totalLeads"`
	SnapshotSaved      bool      `json:"snapshotSaved"`
	ArchiveObject      string    `json:"archiveObject,omitempty"`
}

func (e PipelineForecastGenerated) EventName() string { return "forecast.pipeline.generated" }
