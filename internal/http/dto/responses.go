package dto

import "github.com/testimonial-hub/backend/internal/lifecycle"

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type CleanupFailure struct {
	TestimonialID string `json:"testimonial_id"`
	Kind          string `json:"kind"`
	Error         string `json:"error"`
}

// CleanupResponse is the summary returned to the scheduler.
type CleanupResponse struct {
	DeletedCount    int              `json:"deleted_count"`
	PendingExpired  int              `json:"pending_expired"`
	ApprovedExpired int              `json:"approved_expired"`
	RejectedExpired int              `json:"rejected_expired"`
	Failures        []CleanupFailure `json:"failures"`
}

func NewCleanupResponse(res lifecycle.SweepResult) CleanupResponse {
	out := CleanupResponse{
		DeletedCount:    res.DeletedCount,
		PendingExpired:  res.PendingExpired,
		ApprovedExpired: res.ApprovedExpired,
		RejectedExpired: res.RejectedExpired,
		Failures:        make([]CleanupFailure, 0, len(res.Failures)),
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, CleanupFailure{
			TestimonialID: f.TestimonialID.String(),
			Kind:          f.Kind,
			Error:         f.Error,
		})
	}
	return out
}
