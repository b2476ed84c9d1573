package signals

import (
	"testing"
	"time"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/repository"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func daysAgo(n float64) time.Time {
	return testNow.Add(-time.Duration(n * 24 * float64(time.Hour)))
}

func newLead() repository.Lead {
	return repository.Lead{
		ID:             uuid.New(),
		PipelineStatus: domain.StatusNewLead,
		CreatedAt:      daysAgo(30),
		UpdatedAt:      daysAgo(4.5),
	}
}

func TestBuildBundleWithoutInteractionsUsesCreatedAt(t *testing.T) {
	lead := newLead()

	b := BuildBundle(lead, nil, nil, nil, testNow)

	if b.DaysSinceLastInteraction != 30 {
		t.Fatalf("expected 30 days since created_at, got %d", b.DaysSinceLastInteraction)
	}
	if b.DaysInCurrentStatus != 4 {
		t.Fatalf("expected 4 whole days in status, got %d", b.DaysInCurrentStatus)
	}
	if b.DemoViewCount != 0 || b.EmailOpenCount != 0 || b.HasReplied || b.FollowUpsIgnoredCount != 0 {
		t.Fatalf("expected empty engagement, got %+v", b)
	}
	if b.IndustryMatch || b.HasReviews || b.HasWebsite || b.GoogleRating != nil {
		t.Fatalf("expected zero fit attributes, got %+v", b)
	}
}

func TestBuildBundleUsesLatestInteractionAcrossSources(t *testing.T) {
	lead := newLead()
	views := []repository.DemoView{{LeadID: lead.ID, CreatedAt: daysAgo(10)}, {LeadID: lead.ID, CreatedAt: daysAgo(6)}}
	emails := []repository.EmailEvent{
		{LeadID: lead.ID, EventType: repository.EmailEventOpen, CreatedAt: daysAgo(8)},
		{LeadID: lead.ID, EventType: repository.EmailEventReply, CreatedAt: daysAgo(2.2)},
		{LeadID: lead.ID, EventType: "bounce", CreatedAt: daysAgo(0)},
	}
	activities := []repository.Activity{
		{LeadID: lead.ID, Type: repository.ActivityCallOutbound, CreatedAt: daysAgo(3)},
		{LeadID: lead.ID, Type: "note_added", CreatedAt: daysAgo(0.5)},
	}

	b := BuildBundle(lead, views, emails, activities, testNow)

	if b.DaysSinceLastInteraction != 2 {
		t.Fatalf("expected 2 days since the reply, got %d", b.DaysSinceLastInteraction)
	}
	if b.DemoViewCount != 2 || b.EmailOpenCount != 1 || b.EmailReplyCount != 1 || !b.HasReplied {
		t.Fatalf("unexpected engagement counts: %+v", b)
	}
}

func TestBuildBundleFollowUpsIgnored(t *testing.T) {
	lead := newLead()
	activities := []repository.Activity{
		{Type: repository.ActivityCallOutbound, CreatedAt: daysAgo(9)},
		{Type: repository.ActivityEmailSent, CreatedAt: daysAgo(8)},
		{Type: repository.ActivityFollowUp, CreatedAt: daysAgo(7)},
		{Type: repository.ActivityVoicemail, CreatedAt: daysAgo(6)},
		{Type: repository.ActivityCallInbound, CreatedAt: daysAgo(5)},
	}
	emails := []repository.EmailEvent{{EventType: repository.EmailEventReply, CreatedAt: daysAgo(4)}}

	b := BuildBundle(lead, nil, emails, activities, testNow)
	if b.FollowUpsIgnoredCount != 2 {
		t.Fatalf("expected 4 outbound - 2 inbound = 2, got %d", b.FollowUpsIgnoredCount)
	}

	more := []repository.Activity{
		{Type: repository.ActivityMeeting, CreatedAt: daysAgo(3)},
		{Type: repository.ActivitySMSReceived, CreatedAt: daysAgo(3)},
		{Type: repository.ActivityEmailReceived, CreatedAt: daysAgo(3)},
	}
	b = BuildBundle(lead, nil, emails, append(activities, more...), testNow)
	if b.FollowUpsIgnoredCount != 0 {
		t.Fatalf("expected ignored count floored at 0, got %d", b.FollowUpsIgnoredCount)
	}
}

func TestBuildBundleFitAttributes(t *testing.T) {
	lead := newLead()
	lead.Industry = ptr("  HVAC ")
	lead.HasWebsite = true
	lead.GoogleRating = ptr(4.4)
	lead.GoogleReviewCount = ptr(12)

	b := BuildBundle(lead, nil, nil, nil, testNow)

	if b.Industry != "hvac" || !b.IndustryMatch {
		t.Fatalf("expected normalized matching industry, got %q match=%v", b.Industry, b.IndustryMatch)
	}
	if !b.HasWebsite || !b.HasReviews || b.ReviewCount != 12 || b.GoogleRating == nil || *b.GoogleRating != 4.4 {
		t.Fatalf("unexpected fit attributes: %+v", b)
	}

	lead.GoogleReviewCount = ptr(0)
	if BuildBundle(lead, nil, nil, nil, testNow).HasReviews {
		t.Fatalf("expected zero reviews to mean has_reviews=false")
	}
}

func TestBuildBundleFutureTimestampsClampToZero(t *testing.T) {
	lead := newLead()
	lead.UpdatedAt = testNow.Add(2 * time.Hour)
	views := []repository.DemoView{{CreatedAt: testNow.Add(time.Hour)}}

	b := BuildBundle(lead, views, nil, nil, testNow)
	if b.DaysSinceLastInteraction != 0 || b.DaysInCurrentStatus != 0 {
		t.Fatalf("expected clock-skewed timestamps to clamp to 0, got %d/%d", b.DaysSinceLastInteraction, b.DaysInCurrentStatus)
	}
}
