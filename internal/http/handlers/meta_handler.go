package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/lifecycle"
)

type MetaHandler struct {
	policy lifecycle.Policy
}

func NewMetaHandler(policy lifecycle.Policy) *MetaHandler {
	return &MetaHandler{policy: policy}
}

type RetentionInfo struct {
	SubmissionTimeoutDays  int `json:"submission_timeout_days"`
	ApprovalRetentionDays  int `json:"approval_retention_days"`
	RejectionRetentionDays int `json:"rejection_retention_days"`
}

func (h *MetaHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetRetention tells the recording page how long videos are kept.
func (h *MetaHandler) GetRetention(c *fiber.Ctx) error {
	const day = 24
	return c.JSON(dto.SuccessResponse{OK: true, Data: RetentionInfo{
		SubmissionTimeoutDays:  int(h.policy.SubmissionTimeout.Hours()) / day,
		ApprovalRetentionDays:  int(h.policy.ApprovalRetention.Hours()) / day,
		RejectionRetentionDays: int(h.policy.RejectionRetention.Hours()) / day,
	}})
}
