package dto

import (
	"time"

	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain/campaign"
)

// --- Request DTOs ---

// CreateCampaignRequest is the request body for creating a campaign.
type CreateCampaignRequest struct {
	Name      string `json:"name" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail" binding:"required,email"`
	BodyHTML  string `json:"bodyHtml"`
	SegmentID string `json:"segmentId" binding:"required,uuid"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCampaignRequest) ToEntity() *campaign.Campaign {
	segmentID, _ := id.Parse(r.SegmentID)
	c := campaign.NewCampaign(r.Name, segmentID)
	c.Subject = r.Subject
	c.FromName = r.FromName
	c.FromEmail = r.FromEmail
	c.BodyHTML = r.BodyHTML
	return c
}

// UpdateCampaignRequest is the request body for updating a draft campaign.
type UpdateCampaignRequest struct {
	Name      string `json:"name" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail" binding:"required,email"`
	BodyHTML  string `json:"bodyHtml"`
	SegmentID string `json:"segmentId" binding:"required,uuid"`
	Version   int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCampaignRequest) ApplyTo(c *campaign.Campaign) {
	segmentID, _ := id.Parse(r.SegmentID)
	c.Name = r.Name
	c.Subject = r.Subject
	c.FromName = r.FromName
	c.FromEmail = r.FromEmail
	c.BodyHTML = r.BodyHTML
	c.SegmentID = segmentID
	c.Version = r.Version
}

// --- Response DTOs ---

// CampaignResponse is the response body for a campaign.
type CampaignResponse struct {
	BaseResponse
	Name        string     `json:"name"`
	Subject     string     `json:"subject"`
	FromName    string     `json:"fromName,omitempty"`
	FromEmail   string     `json:"fromEmail"`
	BodyHTML    string     `json:"bodyHtml,omitempty"`
	SegmentID   string     `json:"segmentId"`
	Status      string     `json:"status"`
	Recipients  int        `json:"recipients"`
	SentCount   int        `json:"sentCount"`
	FailedCount int        `json:"failedCount"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
}

// FromCampaign creates response DTO from domain entity.
func FromCampaign(c *campaign.Campaign) *CampaignResponse {
	return &CampaignResponse{
		BaseResponse: FromBaseEntity(c.BaseEntity),
		Name:         c.Name,
		Subject:      c.Subject,
		FromName:     c.FromName,
		FromEmail:    c.FromEmail,
		BodyHTML:     c.BodyHTML,
		SegmentID:    c.SegmentID.String(),
		Status:       string(c.Status),
		Recipients:   c.Recipients,
		SentCount:    c.SentCount,
		FailedCount:  c.FailedCount,
		SentAt:       c.SentAt,
	}
}
