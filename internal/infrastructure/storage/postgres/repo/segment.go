package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"pulsecrm/internal/domain/segment"
	"pulsecrm/internal/infrastructure/storage/postgres"
)

// SegmentRepo implements segment.Repository. The rule tree is stored as
// JSONB in the rules column.
type SegmentRepo struct {
	*BaseRepo[*segment.Segment]
}

// Compile-time interface check.
var _ segment.Repository = (*SegmentRepo)(nil)

// NewSegmentRepo creates a new segment repository.
func NewSegmentRepo(txManager *postgres.TxManager) *SegmentRepo {
	return &SegmentRepo{
		BaseRepo: NewBaseRepo(BaseRepoConfig[*segment.Segment]{
			TxManager:  txManager,
			TableName:  "segments",
			SelectCols: postgres.ExtractDBColumns[segment.Segment](),
			SearchCols: []string{"name", "description"},
			NewFn:      func() *segment.Segment { return &segment.Segment{} },
			// The rule tree goes through explicit JSON marshaling so the
			// squirrel-built statement carries a jsonb-ready value.
			RowTransform: marshalRules,
		}),
	}
}

// marshalRules encodes the rules column as JSON for the jsonb parameter.
func marshalRules(row map[string]any) error {
	rules, ok := row["rules"]
	if !ok {
		return nil
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	row["rules"] = json.RawMessage(raw)
	return nil
}

// GetByName retrieves a segment by its unique name.
func (r *SegmentRepo) GetByName(ctx context.Context, name string) (*segment.Segment, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[segment.Segment]()...).
		From("segments").
		Where(squirrel.Eq{"name": name}).
		Limit(1)

	return r.FindOne(ctx, q)
}
