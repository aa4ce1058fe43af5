package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/auth"
	"github.com/testimonial-hub/backend/internal/rbac"
	"go.uber.org/zap"
)

const (
	CtxUserID     = "user_id"
	CtxBusinessID = "business_id"
	CtxRole       = "role"
	CtxEmail      = "email"
)

func AuthMiddleware(secret string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(secret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		if !rbac.IsValidRole(claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unknown role"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxBusinessID, claims.BusinessID)
		c.Locals(CtxRole, claims.Role)
		c.Locals(CtxEmail, claims.Email)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetBusinessID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxBusinessID).(uuid.UUID)
	return id
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxRole).(string)
	return role
}

// GetEmail returns nil when the token carried no email.
func GetEmail(c *fiber.Ctx) *string {
	email, _ := c.Locals(CtxEmail).(string)
	if email == "" {
		return nil
	}
	return &email
}

// RequirePermission rejects callers whose role lacks permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetRole(c), permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}
		return c.Next()
	}
}

// InternalTokenMiddleware guards endpoints hit by the scheduler. An empty token
// disables the check for local setups.
func InternalTokenMiddleware(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		got := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if got == "" {
			got = c.Get("X-Cleanup-Token")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid cleanup token"})
		}
		return c.Next()
	}
}
