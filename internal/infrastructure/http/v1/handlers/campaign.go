package handlers

import (
	"github.com/gin-gonic/gin"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain/campaign"
	"pulsecrm/internal/infrastructure/http/v1/dto"
)

// CampaignHandler serves campaign CRUD plus send and audience endpoints.
type CampaignHandler struct {
	*EntityHandler[*campaign.Campaign, dto.CreateCampaignRequest, dto.UpdateCampaignRequest]
	service *campaign.Service
}

// NewCampaignHandler creates a campaign handler.
func NewCampaignHandler(base *BaseHandler, service *campaign.Service) *CampaignHandler {
	crud := NewEntityHandler(base, EntityHandlerConfig[
		*campaign.Campaign,
		dto.CreateCampaignRequest,
		dto.UpdateCampaignRequest,
	]{
		Service:    service,
		EntityName: "campaign",

		MapCreateDTO: func(req dto.CreateCampaignRequest) *campaign.Campaign {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCampaignRequest, existing *campaign.Campaign) *campaign.Campaign {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(c *campaign.Campaign) any {
			return dto.FromCampaign(c)
		},
	})

	return &CampaignHandler{
		EntityHandler: crud,
		service:       service,
	}
}

// Send handles POST /campaigns/:id/send - freeze the audience and queue
// delivery jobs.
func (h *CampaignHandler) Send(c *gin.Context) {
	campaignID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sent, err := h.service.Send(c.Request.Context(), campaignID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCampaign(sent))
}

// Audience handles GET /campaigns/:id/audience - resolve the campaign's
// segment against the current contact list without sending anything.
func (h *CampaignHandler) Audience(c *gin.Context) {
	campaignID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	audience, err := h.service.Audience(c.Request.Context(), campaignID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(audience))
	for i, ct := range audience {
		items[i] = dto.FromContact(ct)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(audience)),
		Limit:      len(audience),
	})
}
