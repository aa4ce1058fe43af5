package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/lifecycle"
)

// CleanupRunner is implemented by cleanup.Job.
type CleanupRunner interface {
	Run(ctx context.Context) lifecycle.SweepResult
}

type CleanupHandler struct {
	job CleanupRunner
}

func NewCleanupHandler(job CleanupRunner) *CleanupHandler {
	return &CleanupHandler{job: job}
}

// RunCleanup sweeps expired testimonials. Per-record failures are part of the
// 200 response body.
func (h *CleanupHandler) RunCleanup(c *fiber.Ctx) error {
	res := h.job.Run(c.UserContext())
	return c.JSON(dto.NewCleanupResponse(res))
}
