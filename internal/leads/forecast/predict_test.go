package forecast

import (
	"math"
	"testing"
	"time"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/signals"
)

var testNow = time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func hvacLead() signals.FeatureBundle {
	return signals.FeatureBundle{
		PipelineStatus: domain.StatusNewLead,
		Industry:       domain.IndustryHVAC,
		IndustryMatch:  true,
	}
}

func TestPredictUnscoredHVACLeadUsesPriorOnly(t *testing.T) {
	p := Predict(hvacLead(), nil, DefaultPriors(), testNow)

	if !approx(p.Probability, 0.28) {
		t.Fatalf("expected probability 0.28, got %v", p.Probability)
	}
	if p.TimeToCloseDays != 21 {
		t.Fatalf("expected 21 days to close, got %d", p.TimeToCloseDays)
	}
	if p.DealValue != 3600 {
		t.Fatalf("expected deal value 3600, got %v", p.DealValue)
	}
	want := time.Date(2026, 5, 25, 0, 0, 0, 0, time.UTC)
	if !p.CloseDate.Equal(want) {
		t.Fatalf("expected close date %s, got %s", want, p.CloseDate)
	}
	if p.Factors.ScoreMultiplier != nil {
		t.Fatalf("expected score multiplier to be skipped for unscored lead")
	}
	if p.Bucket != domain.BucketCold {
		t.Fatalf("expected cold bucket, got %s", p.Bucket)
	}
}

func TestPredictZeroScoreHalvesProbability(t *testing.T) {
	priors := DefaultPriors()
	unscored := Predict(hvacLead(), nil, priors, testNow)
	zero := Predict(hvacLead(), &ScoreSnapshot{Overall: 0, Engagement: 0}, priors, testNow)
	perfect := Predict(hvacLead(), &ScoreSnapshot{Overall: 100, Engagement: 0}, priors, testNow)

	if !approx(zero.Probability, unscored.Probability/2) {
		t.Fatalf("expected score 0 to halve %v, got %v", unscored.Probability, zero.Probability)
	}
	if !approx(perfect.Probability, unscored.Probability) {
		t.Fatalf("expected score 100 to leave %v unchanged, got %v", unscored.Probability, perfect.Probability)
	}
	if zero.Factors.ScoreMultiplier == nil || *zero.Factors.ScoreMultiplier != 0.5 {
		t.Fatalf("expected recorded multiplier 0.5, got %v", zero.Factors.ScoreMultiplier)
	}
}

func TestPredictRecencyDecay(t *testing.T) {
	b := hvacLead()
	b.DaysSinceLastInteraction = 10
	if p := Predict(b, nil, DefaultPriors(), testNow); !approx(p.Probability, 0.224) {
		t.Fatalf("expected 0.28*0.8=0.224, got %v", p.Probability)
	}

	b.DaysSinceLastInteraction = 90
	if p := Predict(b, nil, DefaultPriors(), testNow); !approx(p.Probability, 0.14) {
		t.Fatalf("expected decay floored at half (0.14), got %v", p.Probability)
	}
}

func TestPredictStageBonusAndEmailBonuses(t *testing.T) {
	b := hvacLead()
	b.PipelineStatus = domain.StatusDemoEngaged
	b.DemoViewCount = 1
	b.EmailOpenCount = 5
	b.EmailReplyCount = 1

	p := Predict(b, nil, DefaultPriors(), testNow)
	// 0.28 + 0.15 + min(0.25, 0.15) + 0.20 = 0.78, + 0.60*0.15 = 0.87
	if !approx(p.Probability, 0.87) {
		t.Fatalf("expected 0.87, got %v", p.Probability)
	}
	if p.Bucket != domain.BucketHot {
		t.Fatalf("expected hot bucket, got %s", p.Bucket)
	}
}

func TestPredictClampsProbability(t *testing.T) {
	high := hvacLead()
	high.PipelineStatus = domain.StatusReadyToBuy
	high.DemoViewCount = 10
	high.EmailOpenCount = 10
	high.EmailReplyCount = 3
	if p := Predict(high, nil, DefaultPriors(), testNow); p.Probability != domain.MaxProbability {
		t.Fatalf("expected clamp to 0.95, got %v", p.Probability)
	}

	priors, err := DefaultPriors().merge([]byte("default: {close_rate: 0.05, avg_deal_value: 100, avg_days_to_close: 10}"))
	if err != nil {
		t.Fatalf("merge priors: %v", err)
	}
	low := signals.FeatureBundle{PipelineStatus: domain.StatusNewLead, Industry: "dentistry", DaysSinceLastInteraction: 60}
	if p := Predict(low, &ScoreSnapshot{}, priors, testNow); p.Probability != domain.MinProbability {
		t.Fatalf("expected clamp to 0.05, got %v", p.Probability)
	}
}

func TestPredictKeepsFullPrecisionBelowCloseThreshold(t *testing.T) {
	priors, err := DefaultPriors().merge([]byte("default: {close_rate: 0.49996, avg_deal_value: 1000, avg_days_to_close: 10}"))
	if err != nil {
		t.Fatalf("merge priors: %v", err)
	}
	b := signals.FeatureBundle{PipelineStatus: domain.StatusNewLead, Industry: "dentistry"}

	p := Predict(b, nil, priors, testNow)
	if !approx(p.Probability, 0.49996) {
		t.Fatalf("expected unrounded probability 0.49996, got %v", p.Probability)
	}
	if p.Bucket != domain.BucketWarm {
		t.Fatalf("expected warm bucket, got %s", p.Bucket)
	}
	if got := StoredProbability(p.Probability); got != 0.5 {
		t.Fatalf("expected stored probability 0.5, got %v", got)
	}
	if f := Aggregate([]LeadPrediction{p}, testNow); f.PredictedCloses != 0 {
		t.Fatalf("expected a lead below 0.50 not to count as a close, got %d", f.PredictedCloses)
	}
}

func TestPredictTimeToClose(t *testing.T) {
	cases := []struct {
		name     string
		industry string
		status   string
		score    *ScoreSnapshot
		want     int
	}{
		{"roofing ready", domain.IndustryRoofing, domain.StatusReadyToBuy, nil, 6},
		{"roofing ready engaged", domain.IndustryRoofing, domain.StatusReadyToBuy, &ScoreSnapshot{Overall: 90, Engagement: 80}, 4},
		{"engagement at threshold", domain.IndustryRoofing, domain.StatusReadyToBuy, &ScoreSnapshot{Overall: 90, Engagement: 70}, 6},
		{"plumbing floor", domain.IndustryPlumbing, domain.StatusReadyToBuy, &ScoreSnapshot{Overall: 90, Engagement: 100}, 3},
		{"unknown industry", "dentistry", domain.StatusDemoSent, nil, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := signals.FeatureBundle{PipelineStatus: tc.status, Industry: tc.industry}
			p := Predict(b, tc.score, DefaultPriors(), testNow)
			if p.TimeToCloseDays != tc.want {
				t.Fatalf("expected %d days, got %d", tc.want, p.TimeToCloseDays)
			}
		})
	}
}

func TestPredictBounds(t *testing.T) {
	statuses := []string{
		domain.StatusNewLead, domain.StatusContactAttempted, domain.StatusDemoCreated,
		domain.StatusDemoSent, domain.StatusDemoEngaged, domain.StatusReadyToBuy,
	}
	industries := []string{"", "hvac", "roofing", "plumbing", "unknown"}
	priors := DefaultPriors()

	for _, status := range statuses {
		for _, industry := range industries {
			for demos := 0; demos <= 4; demos++ {
				for _, days := range []int{0, 5, 30, 365} {
					for _, score := range []*ScoreSnapshot{nil, {Overall: 0}, {Overall: 55, Engagement: 90}, {Overall: 100, Engagement: 100}} {
						b := signals.FeatureBundle{
							PipelineStatus:           status,
							Industry:                 industry,
							DemoViewCount:            demos,
							EmailOpenCount:           demos,
							EmailReplyCount:          demos % 2,
							DaysSinceLastInteraction: days,
						}
						p := Predict(b, score, priors, testNow)
						if p.Probability < 0.05 || p.Probability > 0.95 {
							t.Fatalf("probability out of bounds: %v for %+v", p.Probability, b)
						}
						if p.TimeToCloseDays < 3 {
							t.Fatalf("time to close below floor: %d for %+v", p.TimeToCloseDays, b)
						}
					}
				}
			}
		}
	}
}

func TestMoreDemoViewsNeverLowerProbability(t *testing.T) {
	prev := 0.0
	for demos := 0; demos <= 6; demos++ {
		b := hvacLead()
		b.DemoViewCount = demos
		p := Predict(b, &ScoreSnapshot{Overall: 40}, DefaultPriors(), testNow)
		if p.Probability < prev {
			t.Fatalf("probability dropped from %v to %v at %d demo views", prev, p.Probability, demos)
		}
		prev = p.Probability
	}
}

func TestPredictUnknownIndustryUsesDefaultRow(t *testing.T) {
	b := signals.FeatureBundle{PipelineStatus: domain.StatusNewLead, Industry: "dentistry"}
	p := Predict(b, nil, DefaultPriors(), testNow)
	if !approx(p.Probability, 0.25) || p.DealValue != 3000 || p.TimeToCloseDays != 22 {
		t.Fatalf("expected default prior row, got p=%v value=%v days=%d", p.Probability, p.DealValue, p.TimeToCloseDays)
	}
	if p.Factors.PriorMatched {
		t.Fatalf("expected PriorMatched=false")
	}
}
