package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testimonial-hub/backend/internal/models"
)

const auditColumns = `id, business_id, actor_user_id, actor_type, action, entity_type, entity_id, meta, created_at`

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Log appends an entry. Meta is stored as jsonb; nil meta is stored as NULL.
func (r *AuditRepo) Log(ctx context.Context, entry models.AuditLog) error {
	var meta []byte
	if entry.Meta != nil {
		b, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("marshal audit meta: %w", err)
		}
		meta = b
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (business_id, actor_user_id, actor_type, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.BusinessID, entry.ActorUserID, entry.ActorType, entry.Action, entry.EntityType, entry.EntityID, meta)
	return err
}

// GetByEntity returns the history of one entity, newest first.
func (r *AuditRepo) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+auditColumns+`
		FROM audit_log WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectAudit(rows)
}

type ActivityFilter struct {
	EntityType *string
	Since      *time.Time
	Limit      int
	Offset     int
}

// ListByBusiness is the activity feed of a tenant.
func (r *AuditRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, f ActivityFilter) ([]models.AuditLog, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+auditColumns+`
		FROM audit_log
		WHERE business_id = $1
		  AND ($2::text IS NULL OR entity_type = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5
	`, businessID, f.EntityType, f.Since, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return collectAudit(rows)
}

func collectAudit(rows pgx.Rows) ([]models.AuditLog, error) {
	defer rows.Close()

	logs := make([]models.AuditLog, 0)
	for rows.Next() {
		var (
			l    models.AuditLog
			meta []byte
		)
		if err := rows.Scan(&l.ID, &l.BusinessID, &l.ActorUserID, &l.ActorType, &l.Action, &l.EntityType, &l.EntityID, &meta, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			var m map[string]any
			if err := json.Unmarshal(meta, &m); err == nil {
				l.Meta = m
			}
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
