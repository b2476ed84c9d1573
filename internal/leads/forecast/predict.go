package forecast

import (
	"math"
	"time"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/signals"

	"github.com/google/uuid"
)

const (
	demoViewBonus      = 0.15
	demoViewBonusCap   = 0.40
	emailOpenBonus     = 0.05
	emailOpenBonusCap  = 0.15
	replyBonus         = 0.20
	recencyDecayDaily  = 0.02
	recencyDecayFloor  = 0.5
	stageBonusWeight   = 0.15
	minDaysToClose     = 3
	fastCloseFactor    = 0.7
	probabilityDecimal = 10000
)

// ScoreSnapshot is the persisted score a prediction may be dampened by.
type ScoreSnapshot struct {
	Overall    int
	Engagement int
}

// LeadPrediction is the forecast for one lead.
type LeadPrediction struct {
	LeadID          uuid.UUID         `json:"leadId"`
	Probability     float64           `json:"predictedCloseProbability"`
	Bucket          domain.Bucket     `json:"bucket"`
	CloseDate       time.Time         `json:"predictedCloseDate"`
	DealValue       float64           `json:"predictedDealValue"`
	TimeToCloseDays int               `json:"predictedTimeToCloseDays"`
	Factors         PredictionFactors `json:"factors"`
}

// PredictionFactors records each step of the probability chain.
type PredictionFactors struct {
	Industry        string   `json:"industry"`
	PriorMatched    bool     `json:"priorMatched"`
	PriorCloseRate  float64  `json:"priorCloseRate"`
	DemoBonus       float64  `json:"demoBonus"`
	EmailBonus      float64  `json:"emailBonus"`
	ReplyBonus      float64  `json:"replyBonus"`
	OverallScore    *int     `json:"overallScore,omitempty"`
	EngagementScore *int     `json:"engagementScore,omitempty"`
	ScoreMultiplier *float64 `json:"scoreMultiplier,omitempty"`
	RecencyDecay    float64  `json:"recencyDecay"`
	StageProgress   float64  `json:"stageProgress"`
	StageBonus      float64  `json:"stageBonus"`
	Unclamped       float64  `json:"unclampedProbability"`
	FastClose       bool     `json:"fastClose"`
}

// Predict runs the probability chain for one lead. When score is nil the
// score multiplier is skipped entirely rather than assuming any score.
func Predict(b signals.FeatureBundle, score *ScoreSnapshot, priors *Priors, now time.Time) LeadPrediction {
	prior, matched := priors.Lookup(b.Industry)
	progress := domain.StageProgress(b.PipelineStatus)

	f := PredictionFactors{
		Industry:       b.Industry,
		PriorMatched:   matched,
		PriorCloseRate: prior.CloseRate,
		DemoBonus:      math.Min(float64(b.DemoViewCount)*demoViewBonus, demoViewBonusCap),
		EmailBonus:     math.Min(float64(b.EmailOpenCount)*emailOpenBonus, emailOpenBonusCap),
		RecencyDecay:   math.Max(recencyDecayFloor, 1-float64(b.DaysSinceLastInteraction)*recencyDecayDaily),
		StageProgress:  progress,
		StageBonus:     progress * stageBonusWeight,
	}
	if b.EmailReplyCount > 0 || b.HasReplied {
		f.ReplyBonus = replyBonus
	}

	p := prior.CloseRate + f.DemoBonus + f.EmailBonus + f.ReplyBonus
	if score != nil {
		multiplier := 0.5 + float64(score.Overall)/100*0.5
		p *= multiplier
		f.ScoreMultiplier = &multiplier
		overall, engagement := score.Overall, score.Engagement
		f.OverallScore, f.EngagementScore = &overall, &engagement
	}
	p *= f.RecencyDecay
	p += f.StageBonus
	f.Unclamped = p

	probability := clampProbability(p)

	days := math.Max(minDaysToClose, float64(prior.AvgDaysToClose)*(1-progress))
	if score != nil && score.Engagement > domain.FastCloseEngagement {
		days *= fastCloseFactor
		f.FastClose = true
	}
	timeToClose := max(minDaysToClose, int(math.Round(days)))

	return LeadPrediction{
		LeadID:          b.LeadID,
		Probability:     probability,
		Bucket:          domain.ProbabilityBucket(probability),
		CloseDate:       utcDate(now).AddDate(0, 0, timeToClose),
		DealValue:       prior.AvgDealValue,
		TimeToCloseDays: timeToClose,
		Factors:         f,
	}
}

func clampProbability(p float64) float64 {
	return math.Max(domain.MinProbability, math.Min(domain.MaxProbability, p))
}

// StoredProbability rounds p to the four decimals the predictions table
// keeps. Bucketing and aggregation use the unrounded value.
func StoredProbability(p float64) float64 {
	return math.Round(p*probabilityDecimal) / probabilityDecimal
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
