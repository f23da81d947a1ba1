package contact

import (
	"context"

	"pulsecrm/internal/domain"
)

// Repository defines the interface for Contact persistence.
type Repository interface {
	domain.Repository[*Contact]

	// GetByEmail retrieves a contact by its unique email.
	GetByEmail(ctx context.Context, email string) (*Contact, error)

	// ListAll returns every contact, in creation order. Audience evaluation
	// walks the full list; contact lists at console scale fit in memory.
	ListAll(ctx context.Context) ([]*Contact, error)
}
