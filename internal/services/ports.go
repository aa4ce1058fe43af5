package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
)

type TestimonialStore interface {
	lifecycle.Repository
	List(ctx context.Context, f repositories.TestimonialFilter) ([]models.Testimonial, error)
	StatusesByCampaign(ctx context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	LiveIDsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

type CampaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	GetByShareToken(ctx context.Context, token uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	MarkInvited(ctx context.Context, c *models.Campaign) error
	Archive(ctx context.Context, c *models.Campaign) error
	List(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error)
}

type BusinessStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	Upsert(ctx context.Context, b *models.Business) error
}

type MemberStore interface {
	Upsert(ctx context.Context, businessID, userID uuid.UUID, email *string, role string) (*models.BusinessMember, error)
	List(ctx context.Context, businessID uuid.UUID) ([]models.BusinessMember, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, f repositories.ActivityFilter) ([]models.AuditLog, error)
}

// Lifecycle is the part of the lifecycle manager the services drive.
type Lifecycle interface {
	Approve(ctx context.Context, id uuid.UUID, now time.Time, actor lifecycle.Actor) (*models.Testimonial, error)
	Reject(ctx context.Context, id uuid.UUID, now time.Time, actor lifecycle.Actor) (*models.Testimonial, error)
	DeleteNow(ctx context.Context, id uuid.UUID, now time.Time, actor lifecycle.Actor) (*models.Testimonial, error)
}
