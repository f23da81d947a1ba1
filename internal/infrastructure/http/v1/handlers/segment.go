package handlers

import (
	"github.com/gin-gonic/gin"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain/segment"
	"pulsecrm/internal/infrastructure/http/v1/dto"
)

// SegmentHandler serves segment CRUD plus audience preview.
type SegmentHandler struct {
	*EntityHandler[*segment.Segment, dto.CreateSegmentRequest, dto.UpdateSegmentRequest]
	service *segment.Service
}

// NewSegmentHandler creates a segment handler.
func NewSegmentHandler(base *BaseHandler, service *segment.Service) *SegmentHandler {
	crud := NewEntityHandler(base, EntityHandlerConfig[
		*segment.Segment,
		dto.CreateSegmentRequest,
		dto.UpdateSegmentRequest,
	]{
		Service:    service,
		EntityName: "segment",

		MapCreateDTO: func(req dto.CreateSegmentRequest) *segment.Segment {
			return req.ToEntity(service.Catalog())
		},

		MapUpdateDTO: func(req dto.UpdateSegmentRequest, existing *segment.Segment) *segment.Segment {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(s *segment.Segment) any {
			return dto.FromSegment(s)
		},
	})

	return &SegmentHandler{
		EntityHandler: crud,
		service:       service,
	}
}

// Preview handles POST /segments/preview - evaluate an unsaved rule tree
// against the current contact list.
func (h *SegmentHandler) Preview(c *gin.Context) {
	var req dto.PreviewSegmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Preview(c.Request.Context(), req.Rules)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPreview(result))
}

// PreviewByID handles GET /segments/:id/preview - evaluate a saved segment.
func (h *SegmentHandler) PreviewByID(c *gin.Context) {
	segmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.service.PreviewByID(c.Request.Context(), segmentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPreview(result))
}
