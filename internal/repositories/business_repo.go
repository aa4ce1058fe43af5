package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testimonial-hub/backend/internal/models"
)

type BusinessRepo struct {
	pool *pgxpool.Pool
}

func NewBusinessRepo(pool *pgxpool.Pool) *BusinessRepo {
	return &BusinessRepo{pool: pool}
}

// GetByID returns (nil, nil) when the business does not exist.
func (r *BusinessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var b models.Business
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, website, logo_url, created_at, updated_at
		FROM businesses WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Website, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Upsert creates the business on first save and updates its profile afterwards.
func (r *BusinessRepo) Upsert(ctx context.Context, b *models.Business) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO businesses (id, name, website, logo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			website = EXCLUDED.website,
			logo_url = EXCLUDED.logo_url,
			updated_at = now()
		RETURNING created_at, updated_at
	`, b.ID, b.Name, b.Website, b.LogoURL).Scan(&b.CreatedAt, &b.UpdatedAt)
}
