package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryRepo struct {
	byID map[id.ID]*Contact
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[id.ID]*Contact)}
}

func (r *memoryRepo) Create(ctx context.Context, c *Contact) error {
	r.byID[c.ID] = c
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, entityID id.ID) (*Contact, error) {
	c, ok := r.byID[entityID]
	if !ok {
		return nil, apperror.NewNotFound("contact", entityID.String())
	}
	return c, nil
}

func (r *memoryRepo) Update(ctx context.Context, c *Contact) error {
	if _, ok := r.byID[c.ID]; !ok {
		return apperror.NewNotFound("contact", c.ID.String())
	}
	r.byID[c.ID] = c
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, entityID id.ID) error {
	delete(r.byID, entityID)
	return nil
}

func (r *memoryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Contact], error) {
	result := domain.ListResult[*Contact]{Limit: filter.Limit, Offset: filter.Offset}
	for _, c := range r.byID {
		result.Items = append(result.Items, c)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *memoryRepo) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	_, ok := r.byID[entityID]
	return ok, nil
}

func (r *memoryRepo) GetByEmail(ctx context.Context, email string) (*Contact, error) {
	for _, c := range r.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("contact", email)
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]*Contact, error) {
	out := make([]*Contact, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func TestServiceCreate_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), passthroughTx{})

	require.NoError(t, svc.Create(ctx, NewContact("jane@acme.io")))

	err := svc.Create(ctx, NewContact("jane@acme.io"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestServiceUpdate_KeepsOwnEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), passthroughTx{})

	c := NewContact("jane@acme.io")
	require.NoError(t, svc.Create(ctx, c))

	c.FirstName = "Jane"
	assert.NoError(t, svc.Update(ctx, c))
}

func TestServiceAddTag(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), passthroughTx{})

	c := NewContact("jane@acme.io")
	require.NoError(t, svc.Create(ctx, c))

	updated, err := svc.AddTag(ctx, c.ID, "vip")
	require.NoError(t, err)
	assert.True(t, updated.HasTag("vip"))

	// Adding the same tag twice is a no-op.
	again, err := svc.AddTag(ctx, c.ID, "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, again.Tags)

	_, err = svc.AddTag(ctx, c.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag is required")

	_, err = svc.AddTag(ctx, id.New(), "vip")
	assert.True(t, apperror.IsNotFound(err))
}

func TestServiceRemoveTag(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), passthroughTx{})

	c := NewContact("jane@acme.io")
	c.Tags = []string{"vip", "beta"}
	require.NoError(t, svc.Create(ctx, c))

	updated, err := svc.RemoveTag(ctx, c.ID, "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, updated.Tags)

	// Removing an absent tag is a no-op.
	same, err := svc.RemoveTag(ctx, c.ID, "nope")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, same.Tags)
}

func TestServiceListRecords(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), passthroughTx{})

	c := NewContact("jane@acme.io")
	c.Country = "us"
	require.NoError(t, svc.Create(ctx, c))

	records, err := svc.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "jane@acme.io", records[0]["email"])
	assert.Equal(t, "us", records[0]["country"])
}
