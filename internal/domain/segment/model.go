package segment

import (
	"context"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/entity"
)

// Segment is a saved audience definition: a name plus a rule tree. The tree
// is persisted as plain JSON (JSONB column) and reconstructed byte-for-byte
// in structure — ids, operators, nesting — on load.
type Segment struct {
	entity.BaseEntity

	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Rules       RuleGroup `db:"rules" json:"rules"`
}

// NewSegment creates a segment with a fresh default rule tree
// (root AND group with one default condition).
func NewSegment(cat *Catalog, name string) *Segment {
	return &Segment{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Rules:      NewRuleTree(cat),
	}
}

// Validate implements entity.Validatable. Structural rule-tree validation
// runs in the service hooks, where the field catalogue is available.
func (s *Segment) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("segment name is required").
			WithDetail("field", "name")
	}
	return nil
}
