package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign statuses. They are derived from testimonials on read.
const (
	CampaignStatusDraft     = "DRAFT"
	CampaignStatusInvited   = "INVITED"
	CampaignStatusRecorded  = "RECORDED"
	CampaignStatusCompleted = "COMPLETED"
)

type Campaign struct {
	ID             uuid.UUID  `json:"id"`
	BusinessID     uuid.UUID  `json:"business_id"`
	CreatedByID    uuid.UUID  `json:"created_by_id"`
	Name           string     `json:"name"`
	CustomerName   string     `json:"customer_name"`
	CustomerEmail  string     `json:"customer_email"`
	MessageHTML    *string    `json:"message_html,omitempty"`
	MessagePreview string     `json:"message_preview"`
	ShareToken     uuid.UUID  `json:"share_token"`
	InvitedAt      *time.Time `json:"invited_at,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeriveCampaignStatus computes the campaign view from the statuses of its
// testimonials. Deleted testimonials are ignored.
func DeriveCampaignStatus(invitedAt *time.Time, testimonialStatuses []string) string {
	live := 0
	approved := 0
	for _, s := range testimonialStatuses {
		if s == TestimonialStatusDeleted {
			continue
		}
		live++
		if s == TestimonialStatusApproved {
			approved++
		}
	}

	switch {
	case live > 0 && approved == live:
		return CampaignStatusCompleted
	case live > 0:
		return CampaignStatusRecorded
	case invitedAt != nil:
		return CampaignStatusInvited
	default:
		return CampaignStatusDraft
	}
}

// PublicCampaign is what the recording page sees.
type PublicCampaign struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	BusinessName   string    `json:"business_name"`
	CustomerName   string    `json:"customer_name"`
	MessagePreview string    `json:"message_preview"`
	MessageHTML    *string   `json:"message_html,omitempty"`
}
