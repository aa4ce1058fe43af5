package lifecycle

import (
	"fmt"
	"time"

	"github.com/testimonial-hub/backend/internal/models"
)

// Category is the reason a testimonial is due for deletion.
type Category string

const (
	CategoryNone            Category = ""
	CategoryPendingTimeout  Category = "pending_timeout"
	CategoryApprovedExpired Category = "approved_expired"
	CategoryRejectedExpired Category = "rejected_expired"
)

// ReviewPatch builds the patch for an operator decision on t.
func ReviewPatch(t *models.Testimonial, to string, now time.Time, p Policy) (models.StatusPatch, error) {
	if t.Status != models.TestimonialStatusPending {
		return models.StatusPatch{}, fmt.Errorf("%w: testimonial %s is %s, not PENDING", ErrInvalidTransition, t.ID, t.Status)
	}

	at := now
	patch := models.StatusPatch{
		ExpectedStatus: models.TestimonialStatusPending,
		Status:         to,
	}
	switch to {
	case models.TestimonialStatusApproved:
		expires := now.Add(p.ApprovalRetention)
		patch.ApprovedAt = &at
		patch.ExpiresAt = &expires
	case models.TestimonialStatusRejected:
		expires := now.Add(p.RejectionRetention)
		patch.RejectedAt = &at
		patch.ExpiresAt = &expires
	default:
		return models.StatusPatch{}, fmt.Errorf("%w: %s is not a review decision", ErrInvalidTransition, to)
	}
	return patch, nil
}

// DeletePatch builds the patch that moves t to DELETED.
func DeletePatch(t *models.Testimonial, now time.Time) (models.StatusPatch, error) {
	if !models.IsValidTestimonialTransition(t.Status, models.TestimonialStatusDeleted) {
		return models.StatusPatch{}, fmt.Errorf("%w: testimonial %s cannot leave %s", ErrInvalidTransition, t.ID, t.Status)
	}
	at := now
	return models.StatusPatch{
		ExpectedStatus: t.Status,
		Status:         models.TestimonialStatusDeleted,
		DeletedAt:      &at,
		ClearMedia:     true,
	}, nil
}

// ExpiryCategory reports why t is due for deletion at now, or CategoryNone.
func ExpiryCategory(t *models.Testimonial, now time.Time, p Policy) Category {
	switch t.Status {
	case models.TestimonialStatusPending:
		if now.Sub(t.RecordedAt) > p.SubmissionTimeout {
			return CategoryPendingTimeout
		}
	case models.TestimonialStatusApproved:
		if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
			return CategoryApprovedExpired
		}
	case models.TestimonialStatusRejected:
		if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
			return CategoryRejectedExpired
		}
	}
	return CategoryNone
}
