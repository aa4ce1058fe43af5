package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/testimonial-hub/backend/internal/awsclient"
	"github.com/testimonial-hub/backend/internal/config"
	"github.com/testimonial-hub/backend/internal/db"
	"github.com/testimonial-hub/backend/internal/events"
	"github.com/testimonial-hub/backend/internal/notify"
	"go.uber.org/zap"
)

// Notify bridge subscribes to redis events and enqueues mail jobs on SQS.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if cfg.MailerQueueURL == "" {
		log.Fatal("MAILER_QUEUE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	clients, err := awsclient.NewClients(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal("failed to load aws config", zap.Error(err))
	}

	bridge := notify.NewBridge(notify.NewPublisher(clients.SQS, cfg.MailerQueueURL), log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	for _, stream := range []string{events.StreamCampaigns, events.StreamTestimonials} {
		if err := subscriber.Subscribe(ctx, stream, func(event events.Event) {
			_ = bridge.Forward(ctx, event)
		}); err != nil {
			log.Fatal("failed to subscribe", zap.String("stream", stream), zap.Error(err))
		}
	}

	log.Info("notify-bridge started", zap.String("queue", cfg.MailerQueueURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}
