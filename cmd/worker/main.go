// Package main is the entry point for the PulseCRM delivery worker.
// It relays campaign delivery jobs from the transactional outbox to the
// mailer and runs periodic maintenance (token cleanup, dead letter queue).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"pulsecrm/internal/domain/auth"
	"pulsecrm/internal/domain/campaign"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/domain/segment"
	"pulsecrm/internal/infrastructure/storage/postgres"
	"pulsecrm/internal/infrastructure/storage/postgres/repo"
	"pulsecrm/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting pulsecrm worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// The worker needs the same campaign wiring as the server: a delivery job
	// is processed through campaign.Service.Deliver so the counters and
	// finalization logic live in one place.
	contactRepo := repo.NewContactRepo(txManager)
	segmentRepo := repo.NewSegmentRepo(txManager)
	campaignRepo := repo.NewCampaignRepo(txManager)

	contactService := contact.NewService(contactRepo, txManager)
	segmentService := segment.NewService(segmentRepo, txManager, segment.DefaultCatalog(), contactService)

	outboxPublisher := postgres.NewOutboxPublisher(txManager)
	campaignService := campaign.NewService(
		campaignRepo, txManager, segmentService, contactRepo, outboxPublisher, campaign.LogMailer{},
	)

	tokenRepo := repo.NewTokenRepo(txManager)
	authService := auth.NewService(nil, tokenRepo, txManager, nil, auth.DefaultServiceConfig())

	relay := postgres.NewOutboxRelay(pool.Unwrap(), getEnvInt("OUTBOX_BATCH_SIZE", 100),
		&deliveryHandler{campaigns: campaignService})

	worker := &Worker{
		relay:    relay,
		auth:     authService,
		log:      log.WithComponent("worker"),
		interval: getEnvDuration("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(logger.WithLogger(ctx, log))
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// deliveryHandler decodes outbox messages into delivery jobs.
type deliveryHandler struct {
	campaigns *campaign.Service
}

// Handle implements postgres.OutboxHandler.
func (h *deliveryHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	switch msg.EventType {
	case campaign.EventCampaignDelivery:
		var job campaign.DeliveryJob
		if err := json.Unmarshal(msg.Payload, &job); err != nil {
			return fmt.Errorf("decode delivery job: %w", err)
		}
		return h.campaigns.Deliver(ctx, job)
	default:
		// Unknown events are acknowledged, not retried forever.
		logger.Warn(ctx, "skipping unknown outbox event", "event_type", msg.EventType)
		return nil
	}
}

// Worker polls the outbox and runs periodic maintenance.
type Worker struct {
	relay    *postgres.OutboxRelay
	auth     *auth.Service
	log      *logger.Logger
	interval time.Duration
}

// Run processes the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			processed, err := w.relay.ProcessBatch(ctx)
			if err != nil {
				w.log.Errorw("outbox batch failed", "error", err)
				continue
			}
			if processed > 0 {
				w.log.Debugw("processed outbox batch", "count", processed)
			}

		case <-cleanupTicker.C:
			w.runMaintenance(ctx)
		}
	}
}

func (w *Worker) runMaintenance(ctx context.Context) {
	if moved, err := w.relay.MoveToDLQ(ctx); err != nil {
		w.log.Errorw("dead letter move failed", "error", err)
	} else if moved > 0 {
		w.log.Infow("moved failed messages to dead letter queue", "count", moved)
	}

	if removed, err := w.auth.CleanupExpiredTokens(ctx); err != nil {
		w.log.Errorw("token cleanup failed", "error", err)
	} else if removed > 0 {
		w.log.Infow("cleaned up expired refresh tokens", "count", removed)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
