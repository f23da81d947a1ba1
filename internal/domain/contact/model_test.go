package contact

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecrm/internal/core/id"
)

func TestNewContact(t *testing.T) {
	c := NewContact("jane@acme.io")

	assert.Equal(t, "jane@acme.io", c.Email)
	assert.Equal(t, StageSubscriber, c.LifecycleStage)
	assert.True(t, c.Subscribed)
	assert.NotNil(t, c.Tags)
	assert.False(t, id.IsNil(c.ID))
	assert.Equal(t, 1, c.Version)
}

func TestContactValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Contact)
		wantErr string
	}{
		{"valid", func(c *Contact) {}, ""},
		{"empty email", func(c *Contact) { c.Email = "" }, "email is required"},
		{"malformed email", func(c *Contact) { c.Email = "not-an-email" }, "invalid email format"},
		{"unknown stage", func(c *Contact) { c.LifecycleStage = "vip" }, "invalid lifecycle stage"},
		{"empty stage allowed", func(c *Contact) { c.LifecycleStage = "" }, ""},
		{"negative ltv", func(c *Contact) { c.LifetimeValue = decimal.NewFromInt(-1) }, "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContact("jane@acme.io")
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

func TestContactFullName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"both names", "Jane", "Doe", "Jane Doe"},
		{"first only", "Jane", "", "Jane"},
		{"last only", "", "Doe", "Doe"},
		{"neither falls back to email", "", "", "jane@acme.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContact("jane@acme.io")
			c.FirstName = tt.first
			c.LastName = tt.last
			assert.Equal(t, tt.want, c.FullName())
		})
	}
}

func TestContactHasTag(t *testing.T) {
	c := NewContact("jane@acme.io")
	c.Tags = []string{"vip", "beta"}

	assert.True(t, c.HasTag("vip"))
	assert.False(t, c.HasTag("VIP"), "tag matching is exact")
	assert.False(t, c.HasTag("newsletter"))
}

func TestContactRecord(t *testing.T) {
	lastActivity := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	c := NewContact("jane@acme.io")
	c.FirstName = "Jane"
	c.Country = "de"
	c.LifecycleStage = StageCustomer
	c.Tags = []string{"vip"}
	c.LifetimeValue = decimal.RequireFromString("149.90")
	c.TotalOrders = 7
	c.LastActivityAt = &lastActivity

	rec := c.Record()

	assert.Equal(t, c.ID.String(), rec["id"])
	assert.Equal(t, "jane@acme.io", rec["email"])
	assert.Equal(t, "customer", rec["lifecycle_stage"])
	assert.Equal(t, []string{"vip"}, rec["tags"])
	assert.InDelta(t, 149.90, rec["lifetime_value"], 0.001)
	assert.Equal(t, 7, rec["total_orders"])
	assert.Equal(t, lastActivity, rec["last_activity_at"])
	assert.Equal(t, c.CreatedAt, rec["created_at"])
}

func TestContactRecord_NoActivity(t *testing.T) {
	c := NewContact("jane@acme.io")

	rec := c.Record()

	// A missing date stays absent so is_empty matches it.
	_, present := rec["last_activity_at"]
	assert.False(t, present)
}
