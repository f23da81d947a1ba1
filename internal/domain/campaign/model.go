// Package campaign provides email campaign entities and the dispatch flow:
// a campaign targets a segment, its audience is resolved by the segment
// evaluator, and deliveries are fanned out per contact.
package campaign

import (
	"context"
	"regexp"
	"time"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/entity"
	"pulsecrm/internal/core/id"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Status is the campaign lifecycle state.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Campaign represents one email send to a segment's audience.
type Campaign struct {
	entity.BaseEntity

	Name      string `db:"name" json:"name"`
	Subject   string `db:"subject" json:"subject"`
	FromName  string `db:"from_name" json:"fromName"`
	FromEmail string `db:"from_email" json:"fromEmail"`

	// BodyHTML is the rendered message body
	BodyHTML string `db:"body_html" json:"bodyHtml"`

	// SegmentID references the audience definition
	SegmentID id.ID `db:"segment_id" json:"segmentId"`

	Status Status `db:"status" json:"status"`

	// Recipients is the audience size frozen at send time
	Recipients  int `db:"recipients" json:"recipients"`
	SentCount   int `db:"sent_count" json:"sentCount"`
	FailedCount int `db:"failed_count" json:"failedCount"`

	SentAt *time.Time `db:"sent_at" json:"sentAt,omitempty"`
}

// NewCampaign creates a draft campaign targeting a segment.
func NewCampaign(name string, segmentID id.ID) *Campaign {
	return &Campaign{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		SegmentID:  segmentID,
		Status:     StatusDraft,
	}
}

// Validate implements entity.Validatable.
func (c *Campaign) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("campaign name is required").
			WithDetail("field", "name")
	}
	if c.Subject == "" {
		return apperror.NewValidation("subject is required").
			WithDetail("field", "subject")
	}
	if c.FromEmail == "" || !emailRE.MatchString(c.FromEmail) {
		return apperror.NewValidation("valid sender email is required").
			WithDetail("field", "fromEmail")
	}
	if id.IsNil(c.SegmentID) {
		return apperror.NewValidation("segment is required").
			WithDetail("field", "segmentId")
	}
	if !isValidStatus(c.Status) {
		return apperror.NewValidation("invalid campaign status").
			WithDetail("field", "status").
			WithDetail("value", string(c.Status))
	}
	return nil
}

// IsDraft reports whether the campaign can still be edited and sent.
func (c *Campaign) IsDraft() bool {
	return c.Status == StatusDraft
}

// Finished reports whether all deliveries have been accounted for.
func (c *Campaign) Finished() bool {
	return c.Recipients > 0 && c.SentCount+c.FailedCount >= c.Recipients
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSending, StatusSent, StatusFailed:
		return true
	}
	return false
}
