package handlers

import (
	"github.com/gin-gonic/gin"

	"pulsecrm/internal/domain/segment"
	"pulsecrm/internal/infrastructure/http/v1/dto"
)

// FieldsHandler serves the field catalogue the rule editor builds itself from.
type FieldsHandler struct {
	*BaseHandler
	catalog *segment.Catalog
}

// NewFieldsHandler creates a fields handler.
func NewFieldsHandler(base *BaseHandler, catalog *segment.Catalog) *FieldsHandler {
	return &FieldsHandler{
		BaseHandler: base,
		catalog:     catalog,
	}
}

// List handles GET /fields - the full catalogue plus operators per field type.
func (h *FieldsHandler) List(c *gin.Context) {
	h.OK(c, dto.FromCatalog(h.catalog))
}
