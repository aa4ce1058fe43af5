package handlers

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/services"
	"github.com/testimonial-hub/backend/internal/validation"
	"go.uber.org/zap"
)

type Submitter interface {
	Submit(ctx context.Context, shareToken uuid.UUID, in services.SubmitInput) (*models.Testimonial, error)
}

type CampaignViewer interface {
	PublicView(ctx context.Context, token uuid.UUID) (*models.PublicCampaign, error)
}

// PublicHandler serves the customer-facing recording page.
type PublicHandler struct {
	campaigns    CampaignViewer
	testimonials Submitter
	validate     *validatorv10.Validate
	log          *zap.Logger
}

func NewPublicHandler(campaigns CampaignViewer, testimonials Submitter, validate *validatorv10.Validate, log *zap.Logger) *PublicHandler {
	return &PublicHandler{campaigns: campaigns, testimonials: testimonials, validate: validate, log: log}
}

func (h *PublicHandler) GetCampaign(c *fiber.Ctx) error {
	token, err := uuid.Parse(c.Params("token"))
	if err != nil {
		return respondError(c, h.log, services.ErrCampaignNotFound)
	}
	view, err := h.campaigns.PublicView(c.UserContext(), token)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *PublicHandler) SubmitTestimonial(c *fiber.Ctx) error {
	token, err := uuid.Parse(c.Params("token"))
	if err != nil {
		return respondError(c, h.log, services.ErrCampaignNotFound)
	}

	var req dto.SubmitTestimonialRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return validation.Respond(c, err)
	}

	t, err := h.testimonials.Submit(c.UserContext(), token, services.SubmitInput{
		AssetID:         req.AssetID,
		URL:             req.URL,
		DurationSeconds: req.DurationSeconds,
		FileSizeBytes:   req.FileSizeBytes,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		IdempotencyKey:  c.Get("Idempotency-Key"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: t})
}
