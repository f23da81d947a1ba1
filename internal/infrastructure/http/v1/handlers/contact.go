package handlers

import (
	"github.com/gin-gonic/gin"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/infrastructure/http/v1/dto"
)

// ContactHandler serves contact CRUD plus tag management.
type ContactHandler struct {
	*EntityHandler[*contact.Contact, dto.CreateContactRequest, dto.UpdateContactRequest]
	service *contact.Service
}

// NewContactHandler creates a contact handler.
func NewContactHandler(base *BaseHandler, service *contact.Service) *ContactHandler {
	crud := NewEntityHandler(base, EntityHandlerConfig[
		*contact.Contact,
		dto.CreateContactRequest,
		dto.UpdateContactRequest,
	]{
		Service:    service,
		EntityName: "contact",

		MapCreateDTO: func(req dto.CreateContactRequest) *contact.Contact {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateContactRequest, existing *contact.Contact) *contact.Contact {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(c *contact.Contact) any {
			return dto.FromContact(c)
		},
	})

	return &ContactHandler{
		EntityHandler: crud,
		service:       service,
	}
}

// AddTag handles POST /contacts/:id/tags.
func (h *ContactHandler) AddTag(c *gin.Context) {
	contactID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TagRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.AddTag(c.Request.Context(), contactID, req.Tag)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromContact(updated))
}

// RemoveTag handles DELETE /contacts/:id/tags/:tag.
func (h *ContactHandler) RemoveTag(c *gin.Context) {
	contactID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	updated, err := h.service.RemoveTag(c.Request.Context(), contactID, c.Param("tag"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromContact(updated))
}
