package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Email event types recorded by the mail tracker.
const (
	EmailEventOpen  = "open"
	EmailEventReply = "reply"
)

type DemoView struct {
	LeadID    uuid.UUID
	CreatedAt time.Time
}

type EmailEvent struct {
	LeadID    uuid.UUID
	EventType string
	CreatedAt time.Time
}

// Activity is a logged touchpoint on a lead. Only communication types are
// loaded; see CommunicationActivityTypes.
type Activity struct {
	LeadID    uuid.UUID
	Type      string
	CreatedAt time.Time
}

// Activity types the engine treats as communication.
const (
	ActivityCallOutbound  = "call_outbound"
	ActivityEmailSent     = "email_sent"
	ActivitySMSSent       = "sms_sent"
	ActivityFollowUp      = "follow_up"
	ActivityVoicemail     = "voicemail"
	ActivityCallInbound   = "call_inbound"
	ActivityEmailReceived = "email_received"
	ActivitySMSReceived   = "sms_received"
	ActivityMeeting       = "meeting"
)

// CommunicationActivityTypes are the activity types fetched for signals.
var CommunicationActivityTypes = []string{
	ActivityCallOutbound,
	ActivityEmailSent,
	ActivitySMSSent,
	ActivityFollowUp,
	ActivityVoicemail,
	ActivityCallInbound,
	ActivityEmailReceived,
	ActivitySMSReceived,
	ActivityMeeting,
}

// ListDemoViews returns all demo views for the lead batch in one query.
func (r *Repository) ListDemoViews(ctx context.Context, leadIDs []uuid.UUID) ([]DemoView, error) {
	if len(leadIDs) == 0 {
		return []DemoView{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT lead_id, created_at
		FROM demo_views
		WHERE lead_id = ANY($1)
	`, leadIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]DemoView, 0)
	for rows.Next() {
		var item DemoView
		if err := rows.Scan(&item.LeadID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// ListEmailEvents returns open and reply events for the lead batch.
func (r *Repository) ListEmailEvents(ctx context.Context, leadIDs []uuid.UUID) ([]EmailEvent, error) {
	if len(leadIDs) == 0 {
		return []EmailEvent{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT lead_id, event_type, created_at
		FROM email_events
		WHERE lead_id = ANY($1)
			AND event_type IN ('open', 'reply')
	`, leadIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]EmailEvent, 0)
	for rows.Next() {
		var item EmailEvent
		if err := rows.Scan(&item.LeadID, &item.EventType, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// ListActivities returns communication activities related to the lead batch.
func (r *Repository) ListActivities(ctx context.Context, leadIDs []uuid.UUID) ([]Activity, error) {
	if len(leadIDs) == 0 {
		return []Activity{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT related_to_id, type, created_at
		FROM activities
		WHERE related_to_id = ANY($1)
			AND type = ANY($2::text[])
	`, leadIDs, CommunicationActivityTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var item Activity
		if err := rows.Scan(&item.LeadID, &item.Type, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
