package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	fiberadapter "github.com/awslabs/aws-lambda-go-api-proxy/fiber"
	"github.com/testimonial-hub/backend/internal/bootstrap"
	"github.com/testimonial-hub/backend/internal/config"
	"go.uber.org/zap"
)

// Serves the HTTP API behind API Gateway. Websockets are not available here.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.PostgresMaxConns > 4 {
		cfg.PostgresMaxConns = 4
	}

	ctx := context.Background()
	c, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer c.Close()

	adapter := fiberadapter.New(c.HTTP(ctx, false))
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
