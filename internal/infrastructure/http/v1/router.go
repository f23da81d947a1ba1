// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"pulsecrm/internal/domain/auth"
	"pulsecrm/internal/domain/campaign"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/domain/segment"
	"pulsecrm/internal/infrastructure/http/v1/handlers"
	"pulsecrm/internal/infrastructure/http/v1/middleware"
	"pulsecrm/internal/infrastructure/storage/postgres"
	"pulsecrm/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Domain services
	ContactService  *contact.Service
	SegmentService  *segment.Service
	CampaignService *campaign.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, cfg)

		// Protected endpoints
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerContactRoutes(protected, cfg)
		registerSegmentRoutes(protected, cfg)
		registerCampaignRoutes(protected, cfg)
		registerFieldRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerContactRoutes registers contact endpoints.
func registerContactRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewContactHandler(baseHandler, cfg.ContactService)

	contacts := rg.Group("/contacts")
	RegisterEntityRoutes(contacts, handler)
	contacts.POST("/:id/tags", handler.AddTag)
	contacts.DELETE("/:id/tags/:tag", handler.RemoveTag)
}

// registerSegmentRoutes registers segment endpoints.
func registerSegmentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewSegmentHandler(baseHandler, cfg.SegmentService)

	segments := rg.Group("/segments")
	// Preview of an unsaved tree must be registered before the :id routes.
	segments.POST("/preview", handler.Preview)
	RegisterEntityRoutes(segments, handler)
	segments.GET("/:id/preview", handler.PreviewByID)
}

// registerCampaignRoutes registers campaign endpoints.
func registerCampaignRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewCampaignHandler(baseHandler, cfg.CampaignService)

	campaigns := rg.Group("/campaigns")
	RegisterEntityRoutes(campaigns, handler)
	campaigns.POST("/:id/send", handler.Send)
	campaigns.GET("/:id/audience", handler.Audience)
}

// registerFieldRoutes registers the field catalogue endpoint used by the
// segment rule editor.
func registerFieldRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewFieldsHandler(baseHandler, cfg.SegmentService.Catalog())

	rg.GET("/fields", handler.List)
}
