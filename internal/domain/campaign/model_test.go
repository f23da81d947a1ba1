package campaign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecrm/internal/core/id"
)

func validCampaign() *Campaign {
	c := NewCampaign("Spring launch", id.New())
	c.Subject = "Big news"
	c.FromEmail = "hello@pulsecrm.io"
	return c
}

func TestNewCampaign(t *testing.T) {
	segmentID := id.New()
	c := NewCampaign("Spring launch", segmentID)

	assert.Equal(t, StatusDraft, c.Status)
	assert.Equal(t, segmentID, c.SegmentID)
	assert.True(t, c.IsDraft())
	assert.False(t, id.IsNil(c.ID))
}

func TestCampaignValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Campaign)
		wantErr string
	}{
		{"valid", func(c *Campaign) {}, ""},
		{"missing name", func(c *Campaign) { c.Name = "" }, "name is required"},
		{"missing subject", func(c *Campaign) { c.Subject = "" }, "subject is required"},
		{"missing sender", func(c *Campaign) { c.FromEmail = "" }, "valid sender email"},
		{"malformed sender", func(c *Campaign) { c.FromEmail = "nope" }, "valid sender email"},
		{"missing segment", func(c *Campaign) { c.SegmentID = id.Nil() }, "segment is required"},
		{"bogus status", func(c *Campaign) { c.Status = Status("archived") }, "invalid campaign status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCampaign()
			tt.mutate(c)
			err := c.Validate(ctx)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCampaignIsDraft(t *testing.T) {
	c := validCampaign()
	assert.True(t, c.IsDraft())

	for _, s := range []Status{StatusSending, StatusSent, StatusFailed} {
		c.Status = s
		assert.False(t, c.IsDraft(), string(s))
	}
}

func TestCampaignFinished(t *testing.T) {
	tests := []struct {
		name       string
		recipients int
		sent       int
		failed     int
		want       bool
	}{
		{"no audience is never finished", 0, 0, 0, false},
		{"in flight", 10, 4, 0, false},
		{"all sent", 10, 10, 0, true},
		{"mixed outcome", 10, 7, 3, true},
		{"partial failures pending", 10, 7, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCampaign()
			c.Recipients = tt.recipients
			c.SentCount = tt.sent
			c.FailedCount = tt.failed
			assert.Equal(t, tt.want, c.Finished())
		})
	}
}
