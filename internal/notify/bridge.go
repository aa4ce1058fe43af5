package notify

import (
	"context"
	"fmt"

	"github.com/testimonial-hub/backend/internal/awsclient"
	"github.com/testimonial-hub/backend/internal/events"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, msg MailerMessage) error
}

// Bridge turns application events into mailer jobs.
type Bridge struct {
	sender Sender
	log    *zap.Logger
}

func NewBridge(sender Sender, log *zap.Logger) *Bridge {
	return &Bridge{sender: sender, log: log}
}

// MessageFor maps an event to a mailer job. ok is false for events that send no mail.
func MessageFor(event events.Event) (msg MailerMessage, ok bool) {
	str := func(key string) string {
		v, _ := event.Payload[key].(string)
		return v
	}

	switch event.Type {
	case events.EventCampaignInvited:
		to := str("customer_email")
		if to == "" {
			return MailerMessage{}, false
		}
		return MailerMessage{
			Template:   TemplateRecordingInvite,
			To:         to,
			BusinessID: event.BusinessID(),
			Data: map[string]string{
				"customer_name":   str("customer_name"),
				"business_name":   str("business_name"),
				"campaign_name":   str("campaign_name"),
				"message_preview": str("message_preview"),
				"recording_url":   str("recording_url"),
			},
		}, true
	case events.EventTestimonialSubmitted:
		return MailerMessage{
			Template:   TemplateTestimonialReceived,
			BusinessID: event.BusinessID(),
			Data: map[string]string{
				"testimonial_id": str("testimonial_id"),
				"campaign_id":    str("campaign_id"),
				"customer_name":  str("customer_name"),
			},
		}, true
	default:
		return MailerMessage{}, false
	}
}

func (b *Bridge) Forward(ctx context.Context, event events.Event) error {
	msg, ok := MessageFor(event)
	if !ok {
		return nil
	}
	if err := b.sender.Send(ctx, msg); err != nil {
		b.log.Warn("failed to enqueue mail",
			zap.String("event", event.Type),
			zap.String("template", msg.Template),
			zap.String("aws_error_code", awsclient.ErrorCode(err)),
			zap.Error(err),
		)
		return fmt.Errorf("forward %s: %w", event.Type, err)
	}
	b.log.Info("mail enqueued", zap.String("template", msg.Template), zap.String("business_id", msg.BusinessID))
	return nil
}
