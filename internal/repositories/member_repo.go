package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testimonial-hub/backend/internal/models"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

// Upsert records that a user acted on a business with the role from their token.
func (r *MemberRepo) Upsert(ctx context.Context, businessID, userID uuid.UUID, email *string, role string) (*models.BusinessMember, error) {
	var m models.BusinessMember
	err := r.pool.QueryRow(ctx, `
		INSERT INTO business_members (business_id, user_id, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (business_id, user_id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, business_members.email),
			role = EXCLUDED.role,
			last_active_at = now()
		RETURNING business_id, user_id, email, role, created_at, last_active_at
	`, businessID, userID, email, role).Scan(
		&m.BusinessID, &m.UserID, &m.Email, &m.Role, &m.CreatedAt, &m.LastActiveAt,
	)
	return &m, err
}

func (r *MemberRepo) List(ctx context.Context, businessID uuid.UUID) ([]models.BusinessMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT business_id, user_id, email, role, created_at, last_active_at
		FROM business_members WHERE business_id = $1
		ORDER BY created_at
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.BusinessMember
	for rows.Next() {
		var m models.BusinessMember
		if err := rows.Scan(&m.BusinessID, &m.UserID, &m.Email, &m.Role, &m.CreatedAt, &m.LastActiveAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
