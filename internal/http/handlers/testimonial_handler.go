package handlers

import (
	"context"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/middleware"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
	"github.com/testimonial-hub/backend/internal/validation"
	"go.uber.org/zap"
)

// TestimonialAPI is implemented by services.TestimonialService.
type TestimonialAPI interface {
	Get(ctx context.Context, businessID, id uuid.UUID) (*models.Testimonial, error)
	Decide(ctx context.Context, businessID, id uuid.UUID, action string, actor lifecycle.Actor) (*models.Testimonial, error)
	Delete(ctx context.Context, businessID, id uuid.UUID, actor lifecycle.Actor) (*models.Testimonial, error)
	List(ctx context.Context, businessID uuid.UUID, f repositories.TestimonialFilter) ([]models.Testimonial, error)
	ListByCampaign(ctx context.Context, businessID, campaignID uuid.UUID, f repositories.TestimonialFilter) ([]models.Testimonial, error)
	Events(ctx context.Context, businessID, id uuid.UUID) ([]models.AuditLog, error)
}

type TestimonialHandler struct {
	testimonials TestimonialAPI
	validate     *validatorv10.Validate
	log          *zap.Logger
}

func NewTestimonialHandler(testimonials TestimonialAPI, validate *validatorv10.Validate, log *zap.Logger) *TestimonialHandler {
	return &TestimonialHandler{testimonials: testimonials, validate: validate, log: log}
}

// Decision approves or rejects a pending testimonial.
func (h *TestimonialHandler) Decision(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid testimonial id")
	}

	var req dto.DecisionRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return validation.Respond(c, err)
	}

	actor := lifecycle.UserActor(middleware.GetUserID(c))
	t, err := h.testimonials.Decide(c.UserContext(), middleware.GetBusinessID(c), id, req.Action, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: t})
}

func (h *TestimonialHandler) GetTestimonial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid testimonial id")
	}
	t, err := h.testimonials.Get(c.UserContext(), middleware.GetBusinessID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: t})
}

// DeleteTestimonial purges the video now instead of waiting for expiry.
func (h *TestimonialHandler) DeleteTestimonial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid testimonial id")
	}
	actor := lifecycle.UserActor(middleware.GetUserID(c))
	t, err := h.testimonials.Delete(c.UserContext(), middleware.GetBusinessID(c), id, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: t})
}

func (h *TestimonialHandler) ListTestimonials(c *fiber.Ctx) error {
	list, err := h.testimonials.List(c.UserContext(), middleware.GetBusinessID(c), testimonialFilter(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}

func (h *TestimonialHandler) ListByCampaign(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}
	list, err := h.testimonials.ListByCampaign(c.UserContext(), middleware.GetBusinessID(c), campaignID, testimonialFilter(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}

func (h *TestimonialHandler) GetEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid testimonial id")
	}
	logs, err := h.testimonials.Events(c.UserContext(), middleware.GetBusinessID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}

func testimonialFilter(c *fiber.Ctx) repositories.TestimonialFilter {
	var f repositories.TestimonialFilter
	f.Limit, f.Offset = page(c)
	if v := c.Query("status"); v != "" {
		status := strings.ToUpper(v)
		f.Status = &status
	}
	f.IncludeDeleted = c.QueryBool("include_deleted")
	return f
}
