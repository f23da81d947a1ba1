package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"pulsecrm/internal/domain/contact"
)

// --- Request DTOs ---

// CreateContactRequest is the request body for creating a contact.
type CreateContactRequest struct {
	Email          string           `json:"email" binding:"required,email"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Company        string           `json:"company"`
	Country        string           `json:"country"`
	LifecycleStage string           `json:"lifecycleStage"`
	Tags           []string         `json:"tags"`
	LifetimeValue  *decimal.Decimal `json:"lifetimeValue"`
	TotalOrders    int              `json:"totalOrders"`
	LastActivityAt *time.Time       `json:"lastActivityAt"`
	Subscribed     *bool            `json:"subscribed"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateContactRequest) ToEntity() *contact.Contact {
	c := contact.NewContact(r.Email)
	c.FirstName = r.FirstName
	c.LastName = r.LastName
	c.Company = r.Company
	c.Country = r.Country
	if r.LifecycleStage != "" {
		c.LifecycleStage = r.LifecycleStage
	}
	if r.Tags != nil {
		c.Tags = r.Tags
	}
	if r.LifetimeValue != nil {
		c.LifetimeValue = *r.LifetimeValue
	}
	c.TotalOrders = r.TotalOrders
	c.LastActivityAt = r.LastActivityAt
	if r.Subscribed != nil {
		c.Subscribed = *r.Subscribed
	}
	return c
}

// UpdateContactRequest is the request body for updating a contact.
type UpdateContactRequest struct {
	Email          string           `json:"email" binding:"required,email"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Company        string           `json:"company"`
	Country        string           `json:"country"`
	LifecycleStage string           `json:"lifecycleStage"`
	Tags           []string         `json:"tags"`
	LifetimeValue  *decimal.Decimal `json:"lifetimeValue"`
	TotalOrders    int              `json:"totalOrders"`
	LastActivityAt *time.Time       `json:"lastActivityAt"`
	Subscribed     *bool            `json:"subscribed"`
	Version        int              `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateContactRequest) ApplyTo(c *contact.Contact) {
	c.Email = r.Email
	c.FirstName = r.FirstName
	c.LastName = r.LastName
	c.Company = r.Company
	c.Country = r.Country
	if r.LifecycleStage != "" {
		c.LifecycleStage = r.LifecycleStage
	}
	if r.Tags != nil {
		c.Tags = r.Tags
	}
	if r.LifetimeValue != nil {
		c.LifetimeValue = *r.LifetimeValue
	}
	c.TotalOrders = r.TotalOrders
	c.LastActivityAt = r.LastActivityAt
	if r.Subscribed != nil {
		c.Subscribed = *r.Subscribed
	}
	c.Version = r.Version
}

// TagRequest adds or removes a tag.
type TagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// --- Response DTOs ---

// ContactResponse is the response body for a contact.
type ContactResponse struct {
	BaseResponse
	Email          string          `json:"email"`
	FirstName      string          `json:"firstName,omitempty"`
	LastName       string          `json:"lastName,omitempty"`
	FullName       string          `json:"fullName"`
	Company        string          `json:"company,omitempty"`
	Country        string          `json:"country,omitempty"`
	LifecycleStage string          `json:"lifecycleStage"`
	Tags           []string        `json:"tags"`
	LifetimeValue  decimal.Decimal `json:"lifetimeValue"`
	TotalOrders    int             `json:"totalOrders"`
	LastActivityAt *time.Time      `json:"lastActivityAt,omitempty"`
	Subscribed     bool            `json:"subscribed"`
}

// FromContact creates response DTO from domain entity.
func FromContact(c *contact.Contact) *ContactResponse {
	return &ContactResponse{
		BaseResponse:   FromBaseEntity(c.BaseEntity),
		Email:          c.Email,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		FullName:       c.FullName(),
		Company:        c.Company,
		Country:        c.Country,
		LifecycleStage: c.LifecycleStage,
		Tags:           c.Tags,
		LifetimeValue:  c.LifetimeValue,
		TotalOrders:    c.TotalOrders,
		LastActivityAt: c.LastActivityAt,
		Subscribed:     c.Subscribed,
	}
}
