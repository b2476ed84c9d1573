package scoring

import (
	"math"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/signals"

	"github.com/google/uuid"
)

// scoreVersion is stored with every score row. Bump it when a formula
// changes; rows are overwritten on the next run either way.
const scoreVersion = "2026.1-engagement-urgency-fit"

const (
	demoViewPoints   = 20
	demoViewCap      = 40
	emailOpenPoints  = 10
	emailOpenCap     = 30
	replyPoints      = 30
	decayPointsDaily = 5
	decayCap         = 20

	demoSentStaleDays         = 3
	demoSentStalePoints       = 30
	contactAttemptedStaleDays = 7
	contactAttemptedPoints    = 40
	demoEngagedDays           = 2
	demoEngagedPoints         = 25
	ignoredFollowUpsMin       = 2
	ignoredFollowUpsPoints    = 20
	readyToBuyPoints          = 50

	industryMatchPoints = 30
	websitePoints       = 20
	reviewsPoints       = 20
	highRatingPoints    = 30
	midRatingPoints     = 15
	highRating          = 4.0
	midRating           = 3.0
)

// Result is the output of Score for one lead.
type Result struct {
	LeadID     uuid.UUID `json:"leadId"`
	Engagement int       `json:"engagementScore"`
	Urgency    int       `json:"urgencyScore"`
	Fit        int       `json:"fitScore"`
	Overall    int       `json:"overallScore"`
	Hot        bool      `json:"hot"`
	Factors    Factors   `json:"factors"`
	// Skipped is set when scoring was disabled and nothing was computed.
	Skipped bool `json:"skipped,omitempty"`
}

// Factors explains a score: the bundle it was computed from plus every
// non-zero contribution. It is what lands in score_factors.
type Factors struct {
	Signals       signals.FeatureBundle `json:"signals"`
	Contributions map[string]float64    `json:"contributions"`
	SynergyBonus  bool                  `json:"synergyBonus"`
}

// Score computes all sub-scores and the overall score for a bundle. It is
// deterministic and total.
func Score(b signals.FeatureBundle) Result {
	contributions := make(map[string]float64)

	engagement := engagementScore(b, contributions)
	urgency := urgencyScore(b, contributions)
	fit := fitScore(b, contributions)
	overall, bonus := overallScore(engagement, urgency, fit)

	return Result{
		LeadID:     b.LeadID,
		Engagement: engagement,
		Urgency:    urgency,
		Fit:        fit,
		Overall:    overall,
		Hot:        overall >= domain.HotLeadScore,
		Factors: Factors{
			Signals:       b,
			Contributions: contributions,
			SynergyBonus:  bonus,
		},
	}
}

func engagementScore(b signals.FeatureBundle, contributions map[string]float64) int {
	raw := addFactor(contributions, "engagement.demo_views", min(b.DemoViewCount*demoViewPoints, demoViewCap))
	raw += addFactor(contributions, "engagement.email_opens", min(b.EmailOpenCount*emailOpenPoints, emailOpenCap))
	if b.HasReplied {
		raw += addFactor(contributions, "engagement.replied", replyPoints)
	}
	penalty := addFactor(contributions, "engagement.decay", -min(b.DaysSinceLastInteraction*decayPointsDaily, decayCap))
	return clampScore(float64(max(0, raw+penalty)))
}

// urgencyScore applies status-conditioned rules. Rules are additive and
// more than one may fire.
func urgencyScore(b signals.FeatureBundle, contributions map[string]float64) int {
	total := 0
	switch b.PipelineStatus {
	case domain.StatusDemoSent:
		if b.DaysInCurrentStatus >= demoSentStaleDays {
			total += addFactor(contributions, "urgency.demo_sent_stale", demoSentStalePoints)
		}
	case domain.StatusContactAttempted:
		if b.DaysInCurrentStatus >= contactAttemptedStaleDays {
			total += addFactor(contributions, "urgency.contact_attempted_stale", contactAttemptedPoints)
		}
	case domain.StatusDemoEngaged:
		if b.DaysInCurrentStatus >= demoEngagedDays {
			total += addFactor(contributions, "urgency.demo_engaged", demoEngagedPoints)
		}
	case domain.StatusReadyToBuy:
		total += addFactor(contributions, "urgency.ready_to_buy", readyToBuyPoints)
	}
	if b.FollowUpsIgnoredCount >= ignoredFollowUpsMin {
		total += addFactor(contributions, "urgency.follow_ups_ignored", ignoredFollowUpsPoints)
	}
	return clampScore(float64(total))
}

func fitScore(b signals.FeatureBundle, contributions map[string]float64) int {
	total := 0
	if b.IndustryMatch {
		total += addFactor(contributions, "fit.industry_match", industryMatchPoints)
	}
	if b.HasWebsite {
		total += addFactor(contributions, "fit.website", websitePoints)
	}
	if b.HasReviews {
		total += addFactor(contributions, "fit.reviews", reviewsPoints)
	}
	if b.GoogleRating != nil {
		switch rating := *b.GoogleRating; {
		case rating >= highRating:
			total += addFactor(contributions, "fit.rating", highRatingPoints)
		case rating >= midRating:
			total += addFactor(contributions, "fit.rating", midRatingPoints)
		}
	}
	return clampScore(float64(total))
}

// overallScore weights behavior (engagement, urgency) at twice static fit
// and adds a bonus when every sub-score is strong.
func overallScore(engagement, urgency, fit int) (int, bool) {
	weighted := math.Round(float64(engagement*4+urgency*4+fit*2) / 10)
	bonus := engagement > domain.SynergyBonusFloor && urgency > domain.SynergyBonusFloor && fit > domain.SynergyBonusFloor
	if bonus {
		weighted += domain.SynergyBonus
	}
	return clampScore(weighted), bonus
}

func addFactor(contributions map[string]float64, key string, value int) int {
	if value != 0 {
		contributions[key] = float64(value)
	}
	return value
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
