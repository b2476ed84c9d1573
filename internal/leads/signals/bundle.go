// Package signals turns raw CRM interaction records into per-lead feature
// bundles. It contains no scoring arithmetic.
package signals

import (
	"time"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// FeatureBundle is the complete input to scoring and forecasting for one
// lead. Missing optional lead fields are already defaulted to zero values.
type FeatureBundle struct {
	LeadID                   uuid.UUID `json:"leadId"`
	PipelineStatus           string    `json:"pipelineStatus"`
	Industry                 string    `json:"industry"`
	DemoViewCount            int       `json:"demoViewCount"`
	EmailOpenCount           int       `json:"emailOpenCount"`
	EmailReplyCount          int       `json:"emailReplyCount"`
	HasReplied               bool      `json:"hasReplied"`
	DaysSinceLastInteraction int       `json:"daysSinceLastInteraction"`
	DaysInCurrentStatus      int       `json:"daysInCurrentStatus"`
	FollowUpsIgnoredCount    int       `json:"followUpsIgnoredCount"`
	IndustryMatch            bool      `json:"industryMatch"`
	HasWebsite               bool      `json:"hasWebsite"`
	HasReviews               bool      `json:"hasReviews"`
	ReviewCount              int       `json:"reviewCount"`
	GoogleRating             *float64  `json:"googleRating,omitempty"`
}

var outboundActivities = map[string]struct{}{
	repository.ActivityCallOutbound: {},
	repository.ActivityEmailSent:    {},
	repository.ActivitySMSSent:      {},
	repository.ActivityFollowUp:     {},
	repository.ActivityVoicemail:    {},
}

var inboundActivities = map[string]struct{}{
	repository.ActivityCallInbound:   {},
	repository.ActivityEmailReceived: {},
	repository.ActivitySMSReceived:   {},
	repository.ActivityMeeting:       {},
}

// BuildBundle assembles the feature bundle for one lead from its already
// partitioned interaction records. Records for other leads must not be
// passed in.
func BuildBundle(lead repository.Lead, demoViews []repository.DemoView, emailEvents []repository.EmailEvent, activities []repository.Activity, now time.Time) FeatureBundle {
	industry := ""
	if lead.Industry != nil {
		industry = domain.NormalizeIndustry(*lead.Industry)
	}
	reviewCount := 0
	if lead.GoogleReviewCount != nil && *lead.GoogleReviewCount > 0 {
		reviewCount = *lead.GoogleReviewCount
	}

	b := FeatureBundle{
		LeadID:         lead.ID,
		PipelineStatus: lead.PipelineStatus,
		Industry:       industry,
		DemoViewCount:  len(demoViews),
		IndustryMatch:  domain.IsTargetIndustry(industry),
		HasWebsite:     lead.HasWebsite,
		HasReviews:     reviewCount > 0,
		ReviewCount:    reviewCount,
		GoogleRating:   lead.GoogleRating,
	}

	var lastInteraction time.Time
	touch := func(t time.Time) {
		if t.After(lastInteraction) {
			lastInteraction = t
		}
	}

	for _, v := range demoViews {
		touch(v.CreatedAt)
	}

	inbound, outbound := 0, 0
	for _, e := range emailEvents {
		switch e.EventType {
		case repository.EmailEventOpen:
			b.EmailOpenCount++
		case repository.EmailEventReply:
			b.EmailReplyCount++
			inbound++
		default:
			continue
		}
		touch(e.CreatedAt)
	}
	b.HasReplied = b.EmailReplyCount > 0

	for _, a := range activities {
		if _, ok := outboundActivities[a.Type]; ok {
			outbound++
		} else if _, ok := inboundActivities[a.Type]; ok {
			inbound++
		} else {
			continue
		}
		touch(a.CreatedAt)
	}

	if lastInteraction.IsZero() {
		lastInteraction = lead.CreatedAt
	}
	b.DaysSinceLastInteraction = wholeDaysBetween(lastInteraction, now)
	b.DaysInCurrentStatus = wholeDaysBetween(lead.UpdatedAt, now)
	b.FollowUpsIgnoredCount = max(0, outbound-inbound)

	return b
}

// wholeDaysBetween counts complete 24h periods from since to now. Future
// timestamps (clock skew) count as 0.
func wholeDaysBetween(since, now time.Time) int {
	if since.IsZero() || !now.After(since) {
		return 0
	}
	return int(now.Sub(since) / (24 * time.Hour))
}
