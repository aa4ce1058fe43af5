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
	"github.com/testimonial-hub/backend/internal/richtext"
	"go.uber.org/zap"
)

const previewRunes = 280

type CampaignService struct {
	campaigns    CampaignStore
	testimonials TestimonialStore
	businesses   BusinessStore
	lifecycle    Lifecycle
	audit        AuditStore
	publisher    events.Publisher
	recordingURL string
	now          func() time.Time
	log          *zap.Logger
}

func NewCampaignService(
	campaigns CampaignStore,
	testimonials TestimonialStore,
	businesses BusinessStore,
	lc Lifecycle,
	audit AuditStore,
	publisher events.Publisher,
	recordingURL string,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaigns:    campaigns,
		testimonials: testimonials,
		businesses:   businesses,
		lifecycle:    lc,
		audit:        audit,
		publisher:    publisher,
		recordingURL: strings.TrimRight(recordingURL, "/"),
		now:          time.Now,
		log:          log,
	}
}

type CampaignInput struct {
	Name          string
	CustomerName  string
	CustomerEmail string
	MessageHTML   *string
}

func (s *CampaignService) applyInput(c *models.Campaign, in CampaignInput) error {
	c.Name = in.Name
	c.CustomerName = in.CustomerName
	c.CustomerEmail = in.CustomerEmail
	c.MessageHTML = nil
	c.MessagePreview = ""
	if in.MessageHTML != nil && strings.TrimSpace(*in.MessageHTML) != "" {
		clean, err := richtext.Sanitize(*in.MessageHTML)
		if err != nil {
			return fmt.Errorf("invalid message: %w", err)
		}
		c.MessageHTML = &clean
		c.MessagePreview = richtext.Preview(clean, previewRunes)
	}
	return nil
}

func (s *CampaignService) Create(ctx context.Context, businessID, userID uuid.UUID, in CampaignInput) (*models.Campaign, error) {
	c := &models.Campaign{
		BusinessID:  businessID,
		CreatedByID: userID,
		ShareToken:  uuid.New(),
	}
	if err := s.applyInput(c, in); err != nil {
		return nil, err
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Status = models.CampaignStatusDraft

	_ = s.audit.Log(ctx, models.AuditLog{
		BusinessID:  &businessID,
		ActorUserID: &userID,
		ActorType:   models.ActorUser,
		Action:      "campaign_created",
		EntityType:  "campaign",
		EntityID:    &c.ID,
	})
	return c, nil
}

func (s *CampaignService) load(ctx context.Context, businessID, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.BusinessID != businessID {
		return nil, ErrCampaignNotFound
	}
	return c, nil
}

// withStatus fills the derived status of each campaign.
func (s *CampaignService) withStatus(ctx context.Context, list []models.Campaign) error {
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	statuses, err := s.testimonials.StatusesByCampaign(ctx, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Status = models.DeriveCampaignStatus(list[i].InvitedAt, statuses[list[i].ID])
	}
	return nil
}

func (s *CampaignService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	one := []models.Campaign{*c}
	if err := s.withStatus(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (s *CampaignService) List(ctx context.Context, businessID uuid.UUID, f repositories.CampaignFilter) ([]models.Campaign, error) {
	f.BusinessID = &businessID
	list, err := s.campaigns.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.withStatus(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *CampaignService) Update(ctx context.Context, businessID, id uuid.UUID, in CampaignInput) (*models.Campaign, error) {
	c, err := s.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if c.ArchivedAt != nil {
		return nil, ErrCampaignArchived
	}
	if err := s.applyInput(c, in); err != nil {
		return nil, err
	}
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, businessID, id)
}

// Invite marks the campaign as sent and hands the invitation to the mailer.
func (s *CampaignService) Invite(ctx context.Context, businessID, id, userID uuid.UUID) (*models.Campaign, error) {
	c, err := s.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if c.ArchivedAt != nil {
		return nil, ErrCampaignArchived
	}
	if err := s.campaigns.MarkInvited(ctx, c); err != nil {
		return nil, err
	}

	businessName := ""
	if b, err := s.businesses.GetByID(ctx, businessID); err == nil && b != nil {
		businessName = b.Name
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		BusinessID:  &businessID,
		ActorUserID: &userID,
		ActorType:   models.ActorUser,
		Action:      "campaign_invited",
		EntityType:  "campaign",
		EntityID:    &c.ID,
		Meta:        map[string]any{"customer_email": c.CustomerEmail},
	})
	if err := s.publisher.Publish(ctx, events.StreamCampaigns, events.Event{
		Type: events.EventCampaignInvited,
		Payload: map[string]any{
			"campaign_id":     c.ID.String(),
			"business_id":     businessID.String(),
			"business_name":   businessName,
			"campaign_name":   c.Name,
			"customer_name":   c.CustomerName,
			"customer_email":  c.CustomerEmail,
			"message_preview": c.MessagePreview,
			"recording_url":   s.RecordingURL(c.ShareToken),
		},
	}); err != nil {
		s.log.Warn("failed to publish invite", zap.String("campaign_id", c.ID.String()), zap.Error(err))
	}

	return s.GetByID(ctx, businessID, id)
}

func (s *CampaignService) RecordingURL(token uuid.UUID) string {
	return s.recordingURL + "/" + token.String()
}

type ArchiveResult struct {
	Campaign *models.Campaign `json:"campaign"`
	Deleted  int              `json:"deleted"`
	Failed   int              `json:"failed"`
}

// Archive hides the campaign and deletes every live testimonial it owns. A
// testimonial that cannot be deleted now is left to the expiry sweep.
func (s *CampaignService) Archive(ctx context.Context, businessID, id, userID uuid.UUID) (*ArchiveResult, error) {
	c, err := s.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.Archive(ctx, c); err != nil {
		return nil, err
	}

	ids, err := s.testimonials.LiveIDsByCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &ArchiveResult{Campaign: c}
	actor := lifecycle.UserActor(userID)
	now := s.now().UTC()
	for _, tid := range ids {
		if _, err := s.lifecycle.DeleteNow(ctx, tid, now, actor); err != nil {
			s.log.Warn("failed to delete testimonial of archived campaign",
				zap.String("campaign_id", id.String()),
				zap.String("testimonial_id", tid.String()),
				zap.Error(err),
			)
			res.Failed++
			continue
		}
		res.Deleted++
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		BusinessID:  &businessID,
		ActorUserID: &userID,
		ActorType:   models.ActorUser,
		Action:      "campaign_archived",
		EntityType:  "campaign",
		EntityID:    &c.ID,
		Meta:        map[string]any{"deleted": res.Deleted, "failed": res.Failed},
	})

	one := []models.Campaign{*c}
	if err := s.withStatus(ctx, one); err == nil {
		res.Campaign = &one[0]
	}
	return res, nil
}

// PublicView is what the recording page loads by share token.
func (s *CampaignService) PublicView(ctx context.Context, token uuid.UUID) (*models.PublicCampaign, error) {
	c, err := s.campaigns.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCampaignNotFound
	}

	view := &models.PublicCampaign{
		ID:             c.ID,
		Name:           c.Name,
		CustomerName:   c.CustomerName,
		MessagePreview: c.MessagePreview,
		MessageHTML:    c.MessageHTML,
	}
	if b, err := s.businesses.GetByID(ctx, c.BusinessID); err == nil && b != nil {
		view.BusinessName = b.Name
	}
	return view, nil
}
