// Package contact provides the Contact entity: the audience a CRM campaign
// is selected from.
package contact

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/entity"
	"pulsecrm/internal/domain/segment"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Lifecycle stages mirror the select options of the segment field catalogue.
const (
	StageSubscriber  = "subscriber"
	StageLead        = "lead"
	StageOpportunity = "opportunity"
	StageCustomer    = "customer"
	StageEvangelist  = "evangelist"
)

// Contact represents one person in the audience list.
type Contact struct {
	entity.BaseEntity

	// Email is the unique identity of a contact
	Email string `db:"email" json:"email"`

	FirstName string `db:"first_name" json:"firstName,omitempty"`
	LastName  string `db:"last_name" json:"lastName,omitempty"`
	Company   string `db:"company" json:"company,omitempty"`

	// Country is an ISO-ish code matching the catalogue's select options
	Country string `db:"country" json:"country,omitempty"`

	// LifecycleStage tracks funnel position (subscriber .. evangelist)
	LifecycleStage string `db:"lifecycle_stage" json:"lifecycleStage"`

	// Tags are free-form labels used by array-typed segment conditions
	Tags []string `db:"tags" json:"tags"`

	// LifetimeValue is total revenue attributed to the contact
	LifetimeValue decimal.Decimal `db:"lifetime_value" json:"lifetimeValue"`

	TotalOrders int `db:"total_orders" json:"totalOrders"`

	// LastActivityAt is the most recent open/click/visit
	LastActivityAt *time.Time `db:"last_activity_at" json:"lastActivityAt,omitempty"`

	// Subscribed gates campaign delivery; unsubscribed contacts still
	// appear in segments but are skipped by the dispatcher
	Subscribed bool `db:"subscribed" json:"subscribed"`
}

// NewContact creates a contact with required fields.
func NewContact(email string) *Contact {
	return &Contact{
		BaseEntity:     entity.NewBaseEntity(),
		Email:          email,
		LifecycleStage: StageSubscriber,
		Tags:           []string{},
		Subscribed:     true,
	}
}

// Validate implements entity.Validatable.
func (c *Contact) Validate(ctx context.Context) error {
	if c.Email == "" {
		return apperror.NewValidation("email is required").
			WithDetail("field", "email")
	}
	if !emailRE.MatchString(c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email").
			WithDetail("value", c.Email)
	}
	if c.LifecycleStage != "" && !isValidStage(c.LifecycleStage) {
		return apperror.NewValidation("invalid lifecycle stage").
			WithDetail("field", "lifecycleStage").
			WithDetail("value", c.LifecycleStage)
	}
	if c.LifetimeValue.IsNegative() {
		return apperror.NewValidation("lifetime value cannot be negative").
			WithDetail("field", "lifetimeValue")
	}
	return nil
}

// FullName returns the display name, falling back to email.
func (c *Contact) FullName() string {
	switch {
	case c.FirstName == "" && c.LastName == "":
		return c.Email
	case c.LastName == "":
		return c.FirstName
	case c.FirstName == "":
		return c.LastName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// HasTag reports whether the contact carries a tag.
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Record maps the contact into the segment evaluator's record shape.
// Keys match the field catalogue; the extra "id" key lets preview
// consumers correlate sample records back to contacts.
func (c *Contact) Record() segment.Record {
	rec := segment.Record{
		"id":              c.ID.String(),
		"email":           c.Email,
		"first_name":      c.FirstName,
		"last_name":       c.LastName,
		"company":         c.Company,
		"country":         c.Country,
		"lifecycle_stage": c.LifecycleStage,
		"tags":            c.Tags,
		"lifetime_value":  c.LifetimeValue.InexactFloat64(),
		"total_orders":    c.TotalOrders,
		"created_at":      c.CreatedAt,
	}
	if c.LastActivityAt != nil {
		rec["last_activity_at"] = *c.LastActivityAt
	}
	return rec
}

func isValidStage(stage string) bool {
	switch stage {
	case StageSubscriber, StageLead, StageOpportunity, StageCustomer, StageEvangelist:
		return true
	}
	return false
}
