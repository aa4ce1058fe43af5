// Package bootstrap wires the stores, services, and jobs shared by every binary.
package bootstrap

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testimonial-hub/backend/internal/awsclient"
	"github.com/testimonial-hub/backend/internal/cleanup"
	"github.com/testimonial-hub/backend/internal/config"
	"github.com/testimonial-hub/backend/internal/db"
	"github.com/testimonial-hub/backend/internal/events"
	apphttp "github.com/testimonial-hub/backend/internal/http"
	"github.com/testimonial-hub/backend/internal/http/handlers"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/media"
	"github.com/testimonial-hub/backend/internal/repositories"
	"github.com/testimonial-hub/backend/internal/services"
	"github.com/testimonial-hub/backend/internal/validation"
	"go.uber.org/zap"
)

type Container struct {
	Config *config.Config
	Log    *zap.Logger

	Pool  *pgxpool.Pool
	Redis *redis.Client
	AWS   *awsclient.Clients // nil when no AWS integration is configured

	Publisher  *events.RedisPublisher
	Subscriber *events.RedisSubscriber

	Testimonials *repositories.TestimonialRepo
	Campaigns    *repositories.CampaignRepo
	Businesses   *repositories.BusinessRepo
	Members      *repositories.MemberRepo
	Audit        *repositories.AuditRepo

	Media   *media.Client
	Manager *lifecycle.Manager

	TestimonialService *services.TestimonialService
	CampaignService    *services.CampaignService
	BusinessService    *services.BusinessService

	Cleanup *cleanup.Job
}

// New connects to postgres and redis and builds the object graph. cfg should
// have passed Validate. Close releases the connections.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns), log)
	if err != nil {
		return nil, err
	}
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	c := &Container{
		Config:       cfg,
		Log:          log,
		Pool:         pool,
		Redis:        rdb,
		Publisher:    events.NewRedisPublisher(rdb, log),
		Subscriber:   events.NewRedisSubscriber(rdb, log),
		Testimonials: repositories.NewTestimonialRepo(pool),
		Campaigns:    repositories.NewCampaignRepo(pool),
		Businesses:   repositories.NewBusinessRepo(pool),
		Members:      repositories.NewMemberRepo(pool),
		Audit:        repositories.NewAuditRepo(pool),
	}

	if cfg.CloudWatchNamespace != "" || cfg.MailerQueueURL != "" {
		clients, err := awsclient.NewClients(ctx, cfg.AWSRegion)
		if err != nil {
			log.Warn("aws clients unavailable, metrics and mail disabled", zap.Error(err))
		} else {
			c.AWS = clients
		}
	}

	c.Media = media.NewClient(media.Config{
		BaseURL:           cfg.MediaAPIBaseURL,
		CloudName:         cfg.MediaCloudName,
		APIKey:            cfg.MediaAPIKey,
		APISecret:         cfg.MediaAPISecret,
		RequestsPerSecond: cfg.MediaRequestsPerSecond,
	}, log)

	notifier := services.NewTransitionNotifier(c.Audit, c.Publisher, log)
	c.Manager = lifecycle.NewManager(c.Testimonials, c.Media, notifier, policy, log)

	c.TestimonialService = services.NewTestimonialService(
		c.Testimonials, c.Campaigns, c.Manager, c.Audit, c.Publisher,
		services.NewRedisIdempotency(rdb),
		services.SubmissionLimits{
			MaxVideoSeconds: cfg.MaxVideoSeconds,
			MaxVideoBytes:   cfg.MaxVideoBytes,
			IdempotencyTTL:  cfg.IdempotencyTTL,
		},
		log,
	)
	c.CampaignService = services.NewCampaignService(
		c.Campaigns, c.Testimonials, c.Businesses, c.Manager, c.Audit, c.Publisher, cfg.PublicRecordingURL, log,
	)
	c.BusinessService = services.NewBusinessService(c.Businesses, c.Members, c.Audit, log)

	reporters := []cleanup.Reporter{cleanup.NewEventReporter(c.Publisher)}
	if c.AWS != nil && cfg.CloudWatchNamespace != "" {
		reporters = append(reporters, cleanup.NewCloudWatchReporter(c.AWS.CloudWatch, cfg.CloudWatchNamespace))
	}
	c.Cleanup = cleanup.NewJob(c.Manager, log, reporters...)

	return c, nil
}

func (c *Container) Migrate(ctx context.Context) error {
	return db.RunMigrations(ctx, c.Pool, c.Config.MigrationsDir, c.Log)
}

// HTTP builds the fiber app. The websocket hub is only mounted when withWS is set,
// since API Gateway proxies cannot hold websocket connections.
func (c *Container) HTTP(ctx context.Context, withWS bool) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 << 20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		ErrorHandler: func(fc *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return fc.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	validate := validation.New()
	h := apphttp.Handlers{
		Testimonials: handlers.NewTestimonialHandler(c.TestimonialService, validate, c.Log),
		Campaigns:    handlers.NewCampaignHandler(c.CampaignService, validate, c.Log),
		Businesses:   handlers.NewBusinessHandler(c.BusinessService, validate, c.Log),
		Public:       handlers.NewPublicHandler(c.CampaignService, c.TestimonialService, validate, c.Log),
		Cleanup:      handlers.NewCleanupHandler(c.Cleanup),
		Meta:         handlers.NewMetaHandler(c.Manager.Policy()),
	}
	if withWS {
		h.WSHub = handlers.NewWSHub(c.Config.JWTSecret, c.Subscriber, c.Log)
		h.WSHub.Start(ctx)
	}

	apphttp.SetupRouter(app, c.Config, c.Log, c.Redis, h)
	return app
}

func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
