package repository

import (
	"context"
	"errors"
	"time"

	"leadengine_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the slice of the CRM lead record the engine reads. Optional
// columns stay nil when the CRM never filled them in.
type Lead struct {
	ID                uuid.UUID
	PipelineStatus    string
	Industry          *string
	HasWebsite        bool
	GoogleRating      *float64
	GoogleReviewCount *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const leadColumns = `id, pipeline_status, industry, COALESCE(has_website, false), google_rating::float8, google_review_count, created_at, updated_at`

// ListActiveLeads returns every lead that is not won or lost.
func (r *Repository) ListActiveLeads(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE pipeline_status <> ALL($1::text[])
		ORDER BY created_at ASC
	`, domain.TerminalStatuses)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// ListLeadsByIDs returns the requested leads, skipping won/lost ones. Ids
// that do not exist are silently absent from the result.
func (r *Repository) ListLeadsByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error) {
	if len(ids) == 0 {
		return []Lead{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = ANY($1)
			AND pipeline_status <> ALL($2::text[])
		ORDER BY created_at ASC
	`, ids, domain.TerminalStatuses)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.PipelineStatus,
			&lead.Industry,
			&lead.HasWebsite,
			&lead.GoogleRating,
			&lead.GoogleReviewCount,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
