package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testimonial-hub/backend/internal/models"
)

type TestimonialRepo struct {
	pool *pgxpool.Pool
}

func NewTestimonialRepo(pool *pgxpool.Pool) *TestimonialRepo {
	return &TestimonialRepo{pool: pool}
}

const testimonialColumns = `
	id, campaign_id, business_id, status, customer_name, customer_email,
	media_asset_id, media_url, duration_seconds, file_size_bytes, recorded_at,
	approved_at, rejected_at, expires_at, deleted_at, created_at, updated_at`

func scanTestimonial(row pgx.Row) (*models.Testimonial, error) {
	var t models.Testimonial
	var assetID, url *string
	err := row.Scan(&t.ID, &t.CampaignID, &t.BusinessID, &t.Status, &t.CustomerName, &t.CustomerEmail,
		&assetID, &url, &t.DurationSeconds, &t.FileSizeBytes, &t.RecordedAt,
		&t.ApprovedAt, &t.RejectedAt, &t.ExpiresAt, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assetID != nil {
		t.Media = &models.MediaRef{AssetID: *assetID}
		if url != nil {
			t.Media.URL = *url
		}
	}
	return &t, nil
}

func (r *TestimonialRepo) Create(ctx context.Context, t *models.Testimonial) error {
	var assetID, url *string
	if t.Media != nil {
		assetID, url = &t.Media.AssetID, &t.Media.URL
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO testimonials (campaign_id, business_id, status, customer_name, customer_email,
		                          media_asset_id, media_url, duration_seconds, file_size_bytes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, t.CampaignID, t.BusinessID, t.Status, t.CustomerName, t.CustomerEmail,
		assetID, url, t.DurationSeconds, t.FileSizeBytes, t.RecordedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// FindByID returns (nil, nil) when the testimonial does not exist.
func (r *TestimonialRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	t, err := scanTestimonial(r.pool.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TestimonialRepo) FindByStatusAndCutoff(ctx context.Context, status string, before time.Time, field models.CutoffField) ([]models.Testimonial, error) {
	// The column name cannot be a bind parameter, so only known fields are accepted.
	var column string
	switch field {
	case models.CutoffRecordedAt:
		column = "recorded_at"
	case models.CutoffExpiresAt:
		column = "expires_at"
	default:
		return nil, fmt.Errorf("unsupported cutoff field %q", field)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM testimonials
		WHERE status = $1 AND %s IS NOT NULL AND %s <= $2
		ORDER BY %s
	`, testimonialColumns, column, column, column), status, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// updateStatusSQL is the compare-and-set: $1 id, $2 expected status.
const updateStatusSQL = `
		UPDATE testimonials SET
			status         = $3,
			approved_at    = COALESCE($4, approved_at),
			rejected_at    = COALESCE($5, rejected_at),
			expires_at     = CASE WHEN $8 THEN NULL ELSE COALESCE($6, expires_at) END,
			deleted_at     = COALESCE($7, deleted_at),
			media_asset_id = CASE WHEN $8 THEN NULL ELSE media_asset_id END,
			media_url      = CASE WHEN $8 THEN NULL ELSE media_url END,
			updated_at     = now()
		WHERE id = $1 AND status = $2`

// UpdateStatus writes patch only while the row is still in patch.ExpectedStatus.
// It reports whether a row was changed.
func (r *TestimonialRepo) UpdateStatus(ctx context.Context, id uuid.UUID, patch models.StatusPatch) (bool, error) {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, id, patch.ExpectedStatus, patch.Status, patch.ApprovedAt, patch.RejectedAt, patch.ExpiresAt, patch.DeletedAt, patch.ClearMedia)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type TestimonialFilter struct {
	BusinessID     *uuid.UUID
	CampaignID     *uuid.UUID
	Status         *string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

func (r *TestimonialRepo) List(ctx context.Context, f TestimonialFilter) ([]models.Testimonial, error) {
	query := `SELECT ` + testimonialColumns + ` FROM testimonials`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.BusinessID != nil {
		where = append(where, fmt.Sprintf("business_id = $%d", argIdx))
		args = append(args, *f.BusinessID)
		argIdx++
	}
	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if !f.IncludeDeleted && f.Status == nil {
		where = append(where, fmt.Sprintf("status <> '%s'", models.TestimonialStatusDeleted))
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// StatusesByCampaign returns the status of every testimonial of each campaign,
// the input of models.DeriveCampaignStatus.
func (r *TestimonialRepo) StatusesByCampaign(ctx context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(campaignIDs))
	if len(campaignIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT campaign_id, status FROM testimonials WHERE campaign_id = ANY($1)
	`, campaignIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, err
		}
		out[id] = append(out[id], status)
	}
	return out, rows.Err()
}

// LiveIDsByCampaign lists the ids of testimonials of a campaign that are not deleted.
func (r *TestimonialRepo) LiveIDsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM testimonials WHERE campaign_id = $1 AND status <> $2
	`, campaignID, models.TestimonialStatusDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
