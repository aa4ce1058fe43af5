package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/testimonial-hub/backend/internal/bootstrap"
	"github.com/testimonial-hub/backend/internal/config"
	"go.uber.org/zap"
)

// Worker runs the expiry sweep on a fixed interval.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer c.Close()

	if err := c.Cleanup.Start(ctx, cfg.CleanupInterval, cfg.CleanupOnStart); err != nil {
		log.Fatal("failed to start cleanup scheduler", zap.Error(err))
	}
	defer c.Cleanup.Stop()

	// Liveness probe
	health := fiber.New(fiber.Config{DisableStartupMessage: true})
	health.Get("/health", func(fc *fiber.Ctx) error {
		if err := c.Pool.Ping(fc.UserContext()); err != nil {
			return fc.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return fc.JSON(fiber.Map{"status": "ok"})
	})
	go func() {
		if err := health.Listen(fmt.Sprintf(":%s", cfg.WorkerPort)); err != nil {
			log.Warn("health server stopped", zap.Error(err))
		}
	}()

	log.Info("worker started", zap.Duration("interval", cfg.CleanupInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down worker")
	_ = health.Shutdown()
}
