// Package main is the entry point for the PulseCRM API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsecrm/internal/core/entity"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain"
	"pulsecrm/internal/domain/auth"
	"pulsecrm/internal/domain/campaign"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/domain/segment"
	v1 "pulsecrm/internal/infrastructure/http/v1"
	"pulsecrm/internal/infrastructure/storage/postgres"
	"pulsecrm/internal/infrastructure/storage/postgres/repo"
	"pulsecrm/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting pulsecrm server")

	// --- Database connection ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Repositories ---
	contactRepo := repo.NewContactRepo(txManager)
	segmentRepo := repo.NewSegmentRepo(txManager)
	campaignRepo := repo.NewCampaignRepo(txManager)
	userRepo := repo.NewUserRepo(txManager)
	tokenRepo := repo.NewTokenRepo(txManager)

	// --- Domain services ---
	contactService := contact.NewService(contactRepo, txManager)

	catalog := segment.DefaultCatalog()
	segmentService := segment.NewService(segmentRepo, txManager, catalog, contactService)

	outboxPublisher := postgres.NewOutboxPublisher(txManager)
	mailer := campaign.LogMailer{}
	campaignService := campaign.NewService(
		campaignRepo, txManager, segmentService, contactRepo, outboxPublisher, mailer,
	)

	// Audit trail for every entity change
	registerAuditHooks(contactService.Hooks(), auditService, "contact",
		func(c *contact.Contact) id.ID { return c.ID })
	registerAuditHooks(segmentService.Hooks(), auditService, "segment",
		func(s *segment.Segment) id.ID { return s.ID })
	registerAuditHooks(campaignService.Hooks(), auditService, "campaign",
		func(c *campaign.Campaign) id.ID { return c.ID })

	// --- JWT + Auth Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	authService := auth.NewService(
		userRepo,
		tokenRepo,
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		ContactService:  contactService,
		SegmentService:  segmentService,
		CampaignService: campaignService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// registerAuditHooks writes an audit entry after every successful mutation.
func registerAuditHooks[T entity.Validatable](
	hooks *domain.HookRegistry[T],
	audit *postgres.AuditService,
	entityType string,
	idOf func(T) id.ID,
) {
	hooks.On(domain.AfterCreate, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionCreate, postgres.StructToMap(e))
	})
	hooks.On(domain.AfterUpdate, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionUpdate, postgres.StructToMap(e))
	})
	hooks.On(domain.AfterDelete, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionDelete, nil)
	})
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
