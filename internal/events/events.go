package events

import "context"

// Event types
const (
	EventTestimonialSubmitted     = "testimonial_submitted"
	EventTestimonialStatusChanged = "testimonial_status_changed"
	EventCampaignInvited          = "campaign_invited"
	EventCleanupCompleted         = "cleanup_completed"
)

// Streams
const (
	StreamTestimonials = "events:testimonial"
	StreamCampaigns    = "events:campaign"
	StreamSystem       = "events:system"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// BusinessID returns the owning business carried in the payload, if any.
func (e Event) BusinessID() string {
	id, _ := e.Payload["business_id"].(string)
	return id
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
