package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
	"go.uber.org/zap"
)

type BusinessService struct {
	businesses BusinessStore
	members    MemberStore
	audit      AuditStore
	log        *zap.Logger
}

func NewBusinessService(businesses BusinessStore, members MemberStore, audit AuditStore, log *zap.Logger) *BusinessService {
	return &BusinessService{
		businesses: businesses,
		members:    members,
		audit:      audit,
		log:        log,
	}
}

func (s *BusinessService) Get(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	b, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBusinessNotFound
	}
	return b, nil
}

type BusinessInput struct {
	Name    string
	Website *string
	LogoURL *string
}

// Save creates or updates the business profile of the caller's tenant and
// records the caller as a member.
func (s *BusinessService) Save(ctx context.Context, businessID, userID uuid.UUID, email *string, role string, in BusinessInput) (*models.Business, error) {
	b := &models.Business{
		ID:      businessID,
		Name:    in.Name,
		Website: in.Website,
		LogoURL: in.LogoURL,
	}
	if err := s.businesses.Upsert(ctx, b); err != nil {
		return nil, err
	}
	if _, err := s.members.Upsert(ctx, businessID, userID, email, role); err != nil {
		s.log.Warn("failed to record business member", zap.String("user_id", userID.String()), zap.Error(err))
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		BusinessID:  &businessID,
		ActorUserID: &userID,
		ActorType:   models.ActorUser,
		Action:      "business_updated",
		EntityType:  "business",
		EntityID:    &businessID,
	})
	return b, nil
}

// Members lists the users seen acting on the business, touching the caller first.
func (s *BusinessService) Members(ctx context.Context, businessID, userID uuid.UUID, email *string, role string) ([]models.BusinessMember, error) {
	if _, err := s.members.Upsert(ctx, businessID, userID, email, role); err != nil {
		return nil, err
	}
	return s.members.List(ctx, businessID)
}

func (s *BusinessService) Activity(ctx context.Context, businessID uuid.UUID, f repositories.ActivityFilter) ([]models.AuditLog, error) {
	return s.audit.ListByBusiness(ctx, businessID, f)
}
