package domain

// Score thresholds.
const (
	// HotLeadScore is the overall score at which a lead is reported as hot.
	HotLeadScore = 80
	// SynergyBonusFloor: every sub-score must exceed it for the overall bonus.
	SynergyBonusFloor = 70
	SynergyBonus      = 10
	// FastCloseEngagement: engagement above it shortens time to close.
	FastCloseEngagement = 70
)

// Probability thresholds shared by the per-lead and pipeline views.
const (
	HotProbability     = 0.70
	WarmProbability    = 0.40
	RevenueProbability = WarmProbability
	CloseProbability   = 0.50
	MinProbability     = 0.05
	MaxProbability     = 0.95
)

// Bucket is a display grouping for close probabilities.
type Bucket string

const (
	BucketHot  Bucket = "hot"
	BucketWarm Bucket = "warm"
	BucketCold Bucket = "cold"
)

// ProbabilityBucket classifies p as hot (>= 0.70), warm ([0.40, 0.70)) or cold.
func ProbabilityBucket(p float64) Bucket {
	switch {
	case p >= HotProbability:
		return BucketHot
	case p >= WarmProbability:
		return BucketWarm
	default:
		return BucketCold
	}
}
