package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/testimonial-hub/backend/internal/events"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/models"
	"go.uber.org/zap"
)

// TransitionNotifier writes the audit trail and publishes an event for every
// committed testimonial transition.
type TransitionNotifier struct {
	audit     AuditStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewTransitionNotifier(audit AuditStore, publisher events.Publisher, log *zap.Logger) *TransitionNotifier {
	return &TransitionNotifier{audit: audit, publisher: publisher, log: log}
}

func (n *TransitionNotifier) TestimonialTransitioned(ctx context.Context, t models.Testimonial, from string, actor lifecycle.Actor) {
	if err := n.audit.Log(ctx, models.AuditLog{
		BusinessID:  &t.BusinessID,
		ActorUserID: actor.UserID,
		ActorType:   actor.Type,
		Action:      fmt.Sprintf("testimonial_status_%s_to_%s", strings.ToLower(from), strings.ToLower(t.Status)),
		EntityType:  "testimonial",
		EntityID:    &t.ID,
		Meta:        map[string]any{"old_status": from, "new_status": t.Status},
	}); err != nil {
		n.log.Warn("failed to write audit log", zap.String("testimonial_id", t.ID.String()), zap.Error(err))
	}

	payload := map[string]any{
		"testimonial_id": t.ID.String(),
		"campaign_id":    t.CampaignID.String(),
		"business_id":    t.BusinessID.String(),
		"old_status":     from,
		"new_status":     t.Status,
		"actor_type":     actor.Type,
	}
	if t.ExpiresAt != nil {
		payload["expires_at"] = t.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if err := n.publisher.Publish(ctx, events.StreamTestimonials, events.Event{
		Type:    events.EventTestimonialStatusChanged,
		Payload: payload,
	}); err != nil {
		n.log.Warn("failed to publish transition", zap.String("testimonial_id", t.ID.String()), zap.Error(err))
	}
}
