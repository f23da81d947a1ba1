package campaign

import (
	"context"

	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain"
)

// Repository defines the interface for Campaign persistence.
type Repository interface {
	domain.Repository[*Campaign]

	// RecordDelivery atomically bumps the sent or failed counter.
	RecordDelivery(ctx context.Context, campaignID id.ID, failed bool) error

	// MarkSent transitions the campaign to sent once all deliveries are
	// accounted for. Returns the updated campaign.
	MarkSent(ctx context.Context, campaignID id.ID) (*Campaign, error)
}

// DeliveryJob is the payload of one queued delivery. Jobs are written to the
// transactional outbox together with the campaign status change and consumed
// by the dispatch worker.
type DeliveryJob struct {
	CampaignID id.ID  `json:"campaignId"`
	ContactID  id.ID  `json:"contactId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// EventCampaignDelivery is the outbox event type carrying a DeliveryJob.
const EventCampaignDelivery = "campaign.delivery.requested"

// Dispatcher enqueues delivery jobs. Implemented by the postgres outbox
// publisher; must be called inside the transaction that flips the campaign
// to sending so that status and queue stay consistent.
type Dispatcher interface {
	EnqueueDeliveries(ctx context.Context, campaignID id.ID, jobs []DeliveryJob) error
}
