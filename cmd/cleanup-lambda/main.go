package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/testimonial-hub/backend/internal/bootstrap"
	"github.com/testimonial-hub/backend/internal/config"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"go.uber.org/zap"
)

// Scheduled by an EventBridge rule. Connections are reused across warm invocations.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.PostgresMaxConns > 2 {
		cfg.PostgresMaxConns = 2
	}

	c, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer c.Close()

	lambda.Start(func(ctx context.Context, ev events.CloudWatchEvent) (dto.CleanupResponse, error) {
		log.Info("scheduled cleanup", zap.String("rule_event_id", ev.ID), zap.Time("scheduled_at", ev.Time))
		return dto.NewCleanupResponse(c.Cleanup.Run(ctx)), nil
	})
}
