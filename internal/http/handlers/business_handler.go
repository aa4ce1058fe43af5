package handlers

import (
	"context"
	"time"

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

// BusinessAPI is implemented by services.BusinessService.
type BusinessAPI interface {
	Get(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	Save(ctx context.Context, businessID, userID uuid.UUID, email *string, role string, in services.BusinessInput) (*models.Business, error)
	Members(ctx context.Context, businessID, userID uuid.UUID, email *string, role string) ([]models.BusinessMember, error)
	Activity(ctx context.Context, businessID uuid.UUID, f repositories.ActivityFilter) ([]models.AuditLog, error)
}

type BusinessHandler struct {
	businesses BusinessAPI
	validate   *validatorv10.Validate
	log        *zap.Logger
}

func NewBusinessHandler(businesses BusinessAPI, validate *validatorv10.Validate, log *zap.Logger) *BusinessHandler {
	return &BusinessHandler{businesses: businesses, validate: validate, log: log}
}

func (h *BusinessHandler) GetBusiness(c *fiber.Ctx) error {
	b, err := h.businesses.Get(c.UserContext(), middleware.GetBusinessID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: b})
}

func (h *BusinessHandler) SaveBusiness(c *fiber.Ctx) error {
	var req dto.SaveBusinessRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return validation.Respond(c, err)
	}

	b, err := h.businesses.Save(c.UserContext(),
		middleware.GetBusinessID(c), middleware.GetUserID(c), middleware.GetEmail(c), middleware.GetRole(c),
		services.BusinessInput{Name: req.Name, Website: req.Website, LogoURL: req.LogoURL},
	)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: b})
}

func (h *BusinessHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.businesses.Members(c.UserContext(),
		middleware.GetBusinessID(c), middleware.GetUserID(c), middleware.GetEmail(c), middleware.GetRole(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: members})
}

// ListActivity returns the tenant's audit feed. Optional query: entity_type, since (RFC 3339).
func (h *BusinessHandler) ListActivity(c *fiber.Ctx) error {
	limit, offset := page(c)
	f := repositories.ActivityFilter{Limit: limit, Offset: offset}
	if v := c.Query("entity_type"); v != "" {
		f.EntityType = &v
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid since")
		}
		f.Since = &since
	}

	logs, err := h.businesses.Activity(c.UserContext(), middleware.GetBusinessID(c), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}
