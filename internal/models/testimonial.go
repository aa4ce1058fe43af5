package models

import (
	"time"

	"github.com/google/uuid"
)

// Testimonial statuses
const (
	TestimonialStatusPending  = "PENDING"
	TestimonialStatusApproved = "APPROVED"
	TestimonialStatusRejected = "REJECTED"
	TestimonialStatusDeleted  = "DELETED"
)

// Valid state transitions: from -> []to
var ValidTestimonialTransitions = map[string][]string{
	TestimonialStatusPending:  {TestimonialStatusApproved, TestimonialStatusRejected, TestimonialStatusDeleted},
	TestimonialStatusApproved: {TestimonialStatusDeleted},
	TestimonialStatusRejected: {TestimonialStatusDeleted},
	TestimonialStatusDeleted:  {},
}

func IsValidTestimonialTransition(from, to string) bool {
	allowed, ok := ValidTestimonialTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// MediaRef points at the video stored by the hosting provider.
type MediaRef struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

type Testimonial struct {
	ID              uuid.UUID  `json:"id"`
	CampaignID      uuid.UUID  `json:"campaign_id"`
	BusinessID      uuid.UUID  `json:"business_id"`
	Status          string     `json:"status"`
	CustomerName    *string    `json:"customer_name,omitempty"`
	CustomerEmail   *string    `json:"customer_email,omitempty"`
	Media           *MediaRef  `json:"media,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	FileSizeBytes   int64      `json:"file_size_bytes"`
	RecordedAt      time.Time  `json:"recorded_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (t *Testimonial) IsDeleted() bool {
	return t.Status == TestimonialStatusDeleted
}

// CutoffField selects the timestamp column a cutoff query compares against.
type CutoffField string

const (
	CutoffRecordedAt CutoffField = "recorded_at"
	CutoffExpiresAt  CutoffField = "expires_at"
)

// StatusPatch is a conditional status change. It only applies while the stored
// status still equals ExpectedStatus.
type StatusPatch struct {
	ExpectedStatus string
	Status         string
	ApprovedAt     *time.Time
	RejectedAt     *time.Time
	ExpiresAt      *time.Time
	DeletedAt      *time.Time
	// ClearMedia drops the media reference and expiry; used when entering DELETED.
	ClearMedia bool
}

// Apply mirrors the patch onto an in-memory record after a successful write.
func (p StatusPatch) Apply(t *Testimonial) {
	t.Status = p.Status
	if p.ApprovedAt != nil {
		t.ApprovedAt = p.ApprovedAt
	}
	if p.RejectedAt != nil {
		t.RejectedAt = p.RejectedAt
	}
	if p.ExpiresAt != nil {
		t.ExpiresAt = p.ExpiresAt
	}
	if p.DeletedAt != nil {
		t.DeletedAt = p.DeletedAt
	}
	if p.ClearMedia {
		t.Media = nil
		t.ExpiresAt = nil
	}
}
