package http

import (
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/testimonial-hub/backend/internal/config"
	"github.com/testimonial-hub/backend/internal/http/handlers"
	"github.com/testimonial-hub/backend/internal/middleware"
	"github.com/testimonial-hub/backend/internal/rbac"
	"go.uber.org/zap"
)

type Handlers struct {
	Testimonials *handlers.TestimonialHandler
	Campaigns    *handlers.CampaignHandler
	Businesses   *handlers.BusinessHandler
	Public       *handlers.PublicHandler
	Cleanup      *handlers.CleanupHandler
	Meta         *handlers.MetaHandler
	WSHub        *handlers.WSHub // optional
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	limiter middleware.Counter,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	origins := "*"
	if list := cfg.CORSOriginList(); len(list) > 0 {
		origins = strings.Join(list, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, Idempotency-Key",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", h.Meta.Health)

	// Scheduler trigger
	app.Post("/internal/cleanup", middleware.InternalTokenMiddleware(cfg.CleanupToken), h.Cleanup.RunCleanup)

	api := app.Group("/api/v1")
	api.Get("/meta/retention", h.Meta.GetRetention)

	// Recording page (public, rate limited)
	public := api.Group("/public", middleware.RateLimitMiddleware(limiter, cfg.PublicRateLimit, time.Minute))
	public.Get("/campaigns/:token", h.Public.GetCampaign)
	public.Post("/campaigns/:token/testimonials", h.Public.SubmitTestimonial)

	// Business dashboard
	protected := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret, log))
	view := middleware.RequirePermission(rbac.PermViewTestimonials)
	review := middleware.RequirePermission(rbac.PermReviewTestimonial)
	remove := middleware.RequirePermission(rbac.PermDeleteTestimonial)
	manageCampaign := middleware.RequirePermission(rbac.PermManageCampaign)
	manageBusiness := middleware.RequirePermission(rbac.PermManageBusiness)

	// Business
	protected.Get("/business", view, h.Businesses.GetBusiness)
	protected.Put("/business", manageBusiness, h.Businesses.SaveBusiness)
	protected.Get("/business/members", view, h.Businesses.ListMembers)
	protected.Get("/business/activity", view, h.Businesses.ListActivity)

	// Campaigns
	protected.Post("/campaigns", manageCampaign, h.Campaigns.CreateCampaign)
	protected.Get("/campaigns", view, h.Campaigns.ListCampaigns)
	protected.Get("/campaigns/:id", view, h.Campaigns.GetCampaign)
	protected.Put("/campaigns/:id", manageCampaign, h.Campaigns.UpdateCampaign)
	protected.Delete("/campaigns/:id", remove, h.Campaigns.DeleteCampaign)
	protected.Post("/campaigns/:id/invite", manageCampaign, h.Campaigns.InviteCampaign)
	protected.Get("/campaigns/:id/testimonials", view, h.Testimonials.ListByCampaign)

	// Testimonials
	protected.Get("/testimonials", view, h.Testimonials.ListTestimonials)
	protected.Get("/testimonials/:id", view, h.Testimonials.GetTestimonial)
	protected.Post("/testimonials/:id/decision", review, h.Testimonials.Decision)
	protected.Delete("/testimonials/:id", remove, h.Testimonials.DeleteTestimonial)
	protected.Get("/testimonials/:id/events", view, h.Testimonials.GetEvents)

	// WebSocket
	if h.WSHub != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws", websocket.New(h.WSHub.HandleWS))
	}
}
