package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/events"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
	"go.uber.org/zap"
)

// Review actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type SubmissionLimits struct {
	MaxVideoSeconds int
	MaxVideoBytes   int64
	IdempotencyTTL  time.Duration
}

type TestimonialService struct {
	store     TestimonialStore
	campaigns CampaignStore
	lifecycle Lifecycle
	audit     AuditStore
	publisher events.Publisher
	idem      IdempotencyStore
	limits    SubmissionLimits
	now       func() time.Time
	log       *zap.Logger
}

func NewTestimonialService(
	store TestimonialStore,
	campaigns CampaignStore,
	lc Lifecycle,
	audit AuditStore,
	publisher events.Publisher,
	idem IdempotencyStore,
	limits SubmissionLimits,
	log *zap.Logger,
) *TestimonialService {
	return &TestimonialService{
		store:     store,
		campaigns: campaigns,
		lifecycle: lc,
		audit:     audit,
		publisher: publisher,
		idem:      idem,
		limits:    limits,
		now:       time.Now,
		log:       log,
	}
}

// Get returns a testimonial owned by businessID. Testimonials of other businesses
// are reported as not found.
func (s *TestimonialService) Get(ctx context.Context, businessID, id uuid.UUID) (*models.Testimonial, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrPersistenceFailure, err)
	}
	if t == nil || t.BusinessID != businessID {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, id)
	}
	return t, nil
}

// Decide applies an operator decision through the lifecycle manager.
func (s *TestimonialService) Decide(ctx context.Context, businessID, id uuid.UUID, action string, actor lifecycle.Actor) (*models.Testimonial, error) {
	if _, err := s.Get(ctx, businessID, id); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	switch action {
	case ActionApprove:
		return s.lifecycle.Approve(ctx, id, now, actor)
	case ActionReject:
		return s.lifecycle.Reject(ctx, id, now, actor)
	default:
		return nil, ErrInvalidAction
	}
}

// Delete purges the testimonial immediately. Deleting twice succeeds.
func (s *TestimonialService) Delete(ctx context.Context, businessID, id uuid.UUID, actor lifecycle.Actor) (*models.Testimonial, error) {
	if _, err := s.Get(ctx, businessID, id); err != nil {
		return nil, err
	}
	return s.lifecycle.DeleteNow(ctx, id, s.now().UTC(), actor)
}

func (s *TestimonialService) List(ctx context.Context, businessID uuid.UUID, f repositories.TestimonialFilter) ([]models.Testimonial, error) {
	f.BusinessID = &businessID
	return s.store.List(ctx, f)
}

func (s *TestimonialService) ListByCampaign(ctx context.Context, businessID, campaignID uuid.UUID, f repositories.TestimonialFilter) ([]models.Testimonial, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.BusinessID != businessID {
		return nil, ErrCampaignNotFound
	}
	f.CampaignID = &campaignID
	return s.List(ctx, businessID, f)
}

func (s *TestimonialService) Events(ctx context.Context, businessID, id uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.Get(ctx, businessID, id); err != nil {
		return nil, err
	}
	return s.audit.GetByEntity(ctx, "testimonial", id, 100, 0)
}

type SubmitInput struct {
	AssetID         string
	URL             string
	DurationSeconds int
	FileSizeBytes   int64
	CustomerName    *string
	CustomerEmail   *string
	IdempotencyKey  string
}

// Submit records a customer's upload as a new PENDING testimonial. A repeated
// submission with the same idempotency key returns the first testimonial.
func (s *TestimonialService) Submit(ctx context.Context, shareToken uuid.UUID, in SubmitInput) (*models.Testimonial, error) {
	campaign, err := s.campaigns.GetByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if s.limits.MaxVideoSeconds > 0 && in.DurationSeconds > s.limits.MaxVideoSeconds {
		return nil, fmt.Errorf("%w: %ds > %ds", ErrVideoTooLong, in.DurationSeconds, s.limits.MaxVideoSeconds)
	}
	if s.limits.MaxVideoBytes > 0 && in.FileSizeBytes > s.limits.MaxVideoBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrVideoTooLarge, in.FileSizeBytes)
	}

	key := ""
	if in.IdempotencyKey != "" && s.idem != nil {
		key = shareToken.String() + ":" + strings.TrimSpace(in.IdempotencyKey)
		existing, reserved, err := s.idem.Reserve(ctx, key, s.limits.IdempotencyTTL)
		if err != nil {
			s.log.Warn("idempotency store unavailable", zap.Error(err))
			key = ""
		} else if !reserved {
			return s.replay(ctx, campaign, existing)
		}
	}

	now := s.now().UTC()
	t := &models.Testimonial{
		CampaignID:      campaign.ID,
		BusinessID:      campaign.BusinessID,
		Status:          models.TestimonialStatusPending,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		Media:           &models.MediaRef{AssetID: in.AssetID, URL: in.URL},
		DurationSeconds: in.DurationSeconds,
		FileSizeBytes:   in.FileSizeBytes,
		RecordedAt:      now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		if key != "" {
			_ = s.idem.Release(ctx, key)
		}
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrPersistenceFailure, err)
	}
	if key != "" {
		if err := s.idem.Complete(ctx, key, t.ID.String(), s.limits.IdempotencyTTL); err != nil {
			s.log.Warn("failed to store idempotency result", zap.Error(err))
		}
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		BusinessID: &t.BusinessID,
		ActorType:  models.ActorSystem,
		Action:     "testimonial_submitted",
		EntityType: "testimonial",
		EntityID:   &t.ID,
		Meta:       map[string]any{"duration_seconds": t.DurationSeconds, "file_size_bytes": t.FileSizeBytes},
	})

	payload := map[string]any{
		"testimonial_id": t.ID.String(),
		"campaign_id":    campaign.ID.String(),
		"business_id":    campaign.BusinessID.String(),
		"campaign_name":  campaign.Name,
	}
	if t.CustomerName != nil {
		payload["customer_name"] = *t.CustomerName
	}
	_ = s.publisher.Publish(ctx, events.StreamTestimonials, events.Event{
		Type:    events.EventTestimonialSubmitted,
		Payload: payload,
	})

	s.log.Info("testimonial submitted",
		zap.String("testimonial_id", t.ID.String()),
		zap.String("campaign_id", campaign.ID.String()),
	)
	return t, nil
}

func (s *TestimonialService) replay(ctx context.Context, campaign *models.Campaign, existing string) (*models.Testimonial, error) {
	if existing == idempotencyPending {
		return nil, ErrRequestInProgress
	}
	id, err := uuid.Parse(existing)
	if err != nil {
		return nil, ErrRequestInProgress
	}
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrPersistenceFailure, err)
	}
	if t == nil || t.CampaignID != campaign.ID {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, id)
	}
	return t, nil
}
