package segment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain"
)

// passthroughTx satisfies tx.Manager without a database.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memoryRepo is an in-memory segment repository for service tests.
type memoryRepo struct {
	byID map[id.ID]*Segment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[id.ID]*Segment)}
}

func (r *memoryRepo) Create(ctx context.Context, s *Segment) error {
	r.byID[s.ID] = s
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, entityID id.ID) (*Segment, error) {
	s, ok := r.byID[entityID]
	if !ok {
		return nil, apperror.NewNotFound("segment", entityID.String())
	}
	return s, nil
}

func (r *memoryRepo) Update(ctx context.Context, s *Segment) error {
	if _, ok := r.byID[s.ID]; !ok {
		return apperror.NewNotFound("segment", s.ID.String())
	}
	r.byID[s.ID] = s
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, entityID id.ID) error {
	delete(r.byID, entityID)
	return nil
}

func (r *memoryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Segment], error) {
	result := domain.ListResult[*Segment]{Limit: filter.Limit, Offset: filter.Offset}
	for _, s := range r.byID {
		result.Items = append(result.Items, s)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *memoryRepo) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	_, ok := r.byID[entityID]
	return ok, nil
}

func (r *memoryRepo) GetByName(ctx context.Context, name string) (*Segment, error) {
	for _, s := range r.byID {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("segment", name)
}

// staticRecords satisfies RecordSource with a fixed contact list.
type staticRecords []Record

func (s staticRecords) ListRecords(ctx context.Context) ([]Record, error) {
	return []Record(s), nil
}

func newTestService(records []Record) (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(repo, passthroughTx{}, DefaultCatalog(), staticRecords(records))
	return svc, repo
}

func TestServicePreview(t *testing.T) {
	ctx := context.Background()

	records := []Record{
		{"email": "a@x.io", "country": "us", "total_orders": 9},
		{"email": "b@x.io", "country": "de", "total_orders": 2},
		{"email": "c@x.io", "country": "us", "total_orders": 0},
	}
	svc, _ := newTestService(records)

	rules := RuleGroup{
		ID: "g", Operator: GroupAnd,
		Conditions: []Condition{
			{ID: "c1", Field: "country", Operator: OpEquals, Value: StringValue("us")},
		},
	}

	result, err := svc.Preview(ctx, rules)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Matched)
	assert.Len(t, result.Sample, 2)
}

func TestServicePreview_SampleCap(t *testing.T) {
	ctx := context.Background()

	records := make([]Record, 25)
	for i := range records {
		records[i] = Record{"email": fmt.Sprintf("u%d@x.io", i)}
	}
	svc, _ := newTestService(records)

	// Vacuous AND matches everyone; the sample stays capped.
	result, err := svc.Preview(ctx, RuleGroup{ID: "g", Operator: GroupAnd})
	require.NoError(t, err)
	assert.Equal(t, 25, result.Matched)
	assert.Len(t, result.Sample, previewSampleSize)
}

func TestServicePreviewByID(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService([]Record{
		{"country": "us"},
		{"country": "de"},
	})

	seg := NewSegment(svc.Catalog(), "US audience")
	seg.Rules = RuleGroup{
		ID: "g", Operator: GroupAnd,
		Conditions: []Condition{
			{ID: "c1", Field: "country", Operator: OpEquals, Value: StringValue("us")},
		},
	}
	require.NoError(t, svc.Create(ctx, seg))

	result, err := svc.PreviewByID(ctx, seg.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Matched)

	_, err = svc.PreviewByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestServiceCreate_RejectsInvalidTree(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil)

	seg := NewSegment(svc.Catalog(), "Broken")
	seg.Rules.Conditions[0].Operator = OpGreaterThan // not valid for a string field

	err := svc.Create(ctx, seg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
	assert.Empty(t, repo.byID, "invalid segments must not be persisted")
}

func TestServiceCreate_RejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	first := NewSegment(svc.Catalog(), "Churn risk")
	require.NoError(t, svc.Create(ctx, first))

	dup := NewSegment(svc.Catalog(), "Churn risk")
	err := svc.Create(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestServiceUpdate_KeepsOwnName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	seg := NewSegment(svc.Catalog(), "Churn risk")
	require.NoError(t, svc.Create(ctx, seg))

	// Re-saving under the same name is not a conflict.
	seg.Description = "updated"
	assert.NoError(t, svc.Update(ctx, seg))
}
