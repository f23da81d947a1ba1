// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// EntityRouteHandler defines the interface for entity CRUD handlers.
type EntityRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterEntityRoutes registers standard CRUD routes for an entity.
// This eliminates the need to manually wire up routes for each entity.
//
// Usage:
//
//	repo := repo.NewContactRepo(txManager)
//	service := contact.NewService(repo, txManager)
//	handler := handlers.NewContactHandler(baseHandler, service)
//	RegisterEntityRoutes(api.Group("/contacts"), handler)
func RegisterEntityRoutes(group *gin.RouterGroup, handler EntityRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
