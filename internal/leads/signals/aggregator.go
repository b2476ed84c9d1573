package signals

import (
	"context"
	"time"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/repository"
	"leadengine_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Aggregator loads interaction records for a batch of leads with one query
// per source and partitions them in memory.
type Aggregator struct {
	reader repository.SignalReader
}

func NewAggregator(reader repository.SignalReader) *Aggregator {
	return &Aggregator{reader: reader}
}

// Collect returns one bundle per non-terminal lead. An empty leadIDs means
// all active leads. Won and lost leads are dropped even when requested by
// id. Any fetch failure aborts the whole batch with KindUnavailable.
func (a *Aggregator) Collect(ctx context.Context, leadIDs []uuid.UUID, now time.Time) ([]FeatureBundle, error) {
	var (
		leads []repository.Lead
		err   error
	)
	if len(leadIDs) == 0 {
		leads, err = a.reader.ListActiveLeads(ctx)
	} else {
		leads, err = a.reader.ListLeadsByIDs(ctx, dedupe(leadIDs))
	}
	if err != nil {
		return nil, apperr.Unavailable("failed to load leads", err).WithOp("signals.Collect")
	}

	active := make([]repository.Lead, 0, len(leads))
	ids := make([]uuid.UUID, 0, len(leads))
	for _, lead := range leads {
		if domain.IsTerminalStatus(lead.PipelineStatus) {
			continue
		}
		active = append(active, lead)
		ids = append(ids, lead.ID)
	}
	if len(active) == 0 {
		return []FeatureBundle{}, nil
	}

	var (
		demoViews   []repository.DemoView
		emailEvents []repository.EmailEvent
		activities  []repository.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		demoViews, err = a.reader.ListDemoViews(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		emailEvents, err = a.reader.ListEmailEvents(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = a.reader.ListActivities(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Unavailable("failed to load lead signals", err).WithOp("signals.Collect")
	}

	viewsByLead := make(map[uuid.UUID][]repository.DemoView, len(active))
	for _, v := range demoViews {
		viewsByLead[v.LeadID] = append(viewsByLead[v.LeadID], v)
	}
	emailsByLead := make(map[uuid.UUID][]repository.EmailEvent, len(active))
	for _, e := range emailEvents {
		emailsByLead[e.LeadID] = append(emailsByLead[e.LeadID], e)
	}
	activitiesByLead := make(map[uuid.UUID][]repository.Activity, len(active))
	for _, act := range activities {
		activitiesByLead[act.LeadID] = append(activitiesByLead[act.LeadID], act)
	}

	bundles := make([]FeatureBundle, 0, len(active))
	for _, lead := range active {
		bundles = append(bundles, BuildBundle(lead, viewsByLead[lead.ID], emailsByLead[lead.ID], activitiesByLead[lead.ID], now))
	}
	return bundles, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
