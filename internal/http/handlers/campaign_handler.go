package handlers

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/middleware"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
	"github.com/testimonial-hub/backend/internal/services"
	"github.com/testimonial-hub/backend/internal/validation"
	"go.uber.org/zap"
)

// CampaignAPI is implemented by services.CampaignService.
type CampaignAPI interface {
	Create(ctx context.Context, businessID, userID uuid.UUID, in services.CampaignInput) (*models.Campaign, error)
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, businessID uuid.UUID, f repositories.CampaignFilter) ([]models.Campaign, error)
	Update(ctx context.Context, businessID, id uuid.UUID, in services.CampaignInput) (*models.Campaign, error)
	Invite(ctx context.Context, businessID, id, userID uuid.UUID) (*models.Campaign, error)
	Archive(ctx context.Context, businessID, id, userID uuid.UUID) (*services.ArchiveResult, error)
	PublicView(ctx context.Context, token uuid.UUID) (*models.PublicCampaign, error)
}

type CampaignHandler struct {
	campaigns CampaignAPI
	validate  *validatorv10.Validate
	log       *zap.Logger
}

func NewCampaignHandler(campaigns CampaignAPI, validate *validatorv10.Validate, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, validate: validate, log: log}
}

func campaignInput(req dto.CampaignRequest) services.CampaignInput {
	return services.CampaignInput{
		Name:          req.Name,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		MessageHTML:   req.MessageHTML,
	}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CampaignRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return validation.Respond(c, err)
	}

	campaign, err := h.campaigns.Create(c.UserContext(), middleware.GetBusinessID(c), middleware.GetUserID(c), campaignInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	campaign, err := h.campaigns.GetByID(c.UserContext(), middleware.GetBusinessID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	var filter repositories.CampaignFilter
	filter.Limit, filter.Offset = page(c)
	filter.IncludeArchived = c.QueryBool("include_archived")

	campaigns, err := h.campaigns.List(c.UserContext(), middleware.GetBusinessID(c), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.CampaignRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return validation.Respond(c, err)
	}

	updated, err := h.campaigns.Update(c.UserContext(), middleware.GetBusinessID(c), id, campaignInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *CampaignHandler) InviteCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	campaign, err := h.campaigns.Invite(c.UserContext(), middleware.GetBusinessID(c), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

// DeleteCampaign archives the campaign and purges its testimonials.
func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	res, err := h.campaigns.Archive(c.UserContext(), middleware.GetBusinessID(c), id, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}
