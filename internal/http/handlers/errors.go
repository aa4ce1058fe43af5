package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/middleware"
	"github.com/testimonial-hub/backend/internal/services"
	"go.uber.org/zap"
)

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return fiber.StatusNotFound, "testimonial not found"
	case errors.Is(err, services.ErrCampaignNotFound):
		return fiber.StatusNotFound, "campaign not found"
	case errors.Is(err, services.ErrBusinessNotFound):
		return fiber.StatusNotFound, "business not found"
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return fiber.StatusConflict, "invalid status transition"
	case errors.Is(err, services.ErrCampaignArchived),
		errors.Is(err, services.ErrRequestInProgress):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrVideoTooLong),
		errors.Is(err, services.ErrVideoTooLarge):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status, msg := errorStatus(err)
	reqID := middleware.GetRequestID(c)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
}

// page reads limit/offset query params. Repositories clamp the values.
func page(c *fiber.Ctx) (limit, offset int) {
	limit = 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
