package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testimonial-hub/backend/internal/models"
)

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

const campaignColumns = `
	id, business_id, created_by_id, name, customer_name, customer_email,
	message_html, message_preview, share_token, invited_at, archived_at, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.BusinessID, &c.CreatedByID, &c.Name, &c.CustomerName, &c.CustomerEmail,
		&c.MessageHTML, &c.MessagePreview, &c.ShareToken, &c.InvitedAt, &c.ArchivedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (business_id, created_by_id, name, customer_name, customer_email,
		                       message_html, message_preview, share_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.BusinessID, c.CreatedByID, c.Name, c.CustomerName, c.CustomerEmail,
		c.MessageHTML, c.MessagePreview, c.ShareToken,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID returns (nil, nil) when the campaign does not exist.
func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// GetByShareToken looks up a non-archived campaign by its public recording token.
func (r *CampaignRepo) GetByShareToken(ctx context.Context, token uuid.UUID) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+` FROM campaigns WHERE share_token = $1 AND archived_at IS NULL
	`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *CampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	return r.pool.QueryRow(ctx, `
		UPDATE campaigns SET name = $1, customer_name = $2, customer_email = $3,
		       message_html = $4, message_preview = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`, c.Name, c.CustomerName, c.CustomerEmail, c.MessageHTML, c.MessagePreview, c.ID).Scan(&c.UpdatedAt)
}

// MarkInvited records the first invite; later invites keep the original time.
func (r *CampaignRepo) MarkInvited(ctx context.Context, c *models.Campaign) error {
	return r.pool.QueryRow(ctx, `
		UPDATE campaigns SET invited_at = COALESCE(invited_at, now()), updated_at = now()
		WHERE id = $1
		RETURNING invited_at, updated_at
	`, c.ID).Scan(&c.InvitedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) Archive(ctx context.Context, c *models.Campaign) error {
	return r.pool.QueryRow(ctx, `
		UPDATE campaigns SET archived_at = COALESCE(archived_at, now()), updated_at = now()
		WHERE id = $1
		RETURNING archived_at, updated_at
	`, c.ID).Scan(&c.ArchivedAt, &c.UpdatedAt)
}

type CampaignFilter struct {
	BusinessID      *uuid.UUID
	IncludeArchived bool
	Limit           int
	Offset          int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.BusinessID != nil {
		where = append(where, fmt.Sprintf("business_id = $%d", argIdx))
		args = append(args, *f.BusinessID)
		argIdx++
	}
	if !f.IncludeArchived {
		where = append(where, "archived_at IS NULL")
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
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}
