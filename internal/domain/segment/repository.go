package segment

import (
	"context"

	"pulsecrm/internal/domain"
)

// Repository defines the interface for Segment persistence.
type Repository interface {
	domain.Repository[*Segment]

	// GetByName retrieves a segment by its unique name.
	GetByName(ctx context.Context, name string) (*Segment, error)
}

// RecordSource lists contact records in evaluator shape. Implemented by the
// contact domain; keeps this package free of a contact dependency.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]Record, error)
}
