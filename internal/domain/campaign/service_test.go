package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/domain/segment"
)

// --- Test fakes ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryCampaignRepo struct {
	byID map[id.ID]*Campaign
}

func newMemoryCampaignRepo() *memoryCampaignRepo {
	return &memoryCampaignRepo{byID: make(map[id.ID]*Campaign)}
}

func (r *memoryCampaignRepo) Create(ctx context.Context, c *Campaign) error {
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *memoryCampaignRepo) GetByID(ctx context.Context, entityID id.ID) (*Campaign, error) {
	c, ok := r.byID[entityID]
	if !ok {
		return nil, apperror.NewNotFound("campaign", entityID.String())
	}
	clone := *c
	return &clone, nil
}

func (r *memoryCampaignRepo) Update(ctx context.Context, c *Campaign) error {
	if _, ok := r.byID[c.ID]; !ok {
		return apperror.NewNotFound("campaign", c.ID.String())
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *memoryCampaignRepo) Delete(ctx context.Context, entityID id.ID) error {
	delete(r.byID, entityID)
	return nil
}

func (r *memoryCampaignRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Campaign], error) {
	result := domain.ListResult[*Campaign]{Limit: filter.Limit, Offset: filter.Offset}
	for _, c := range r.byID {
		result.Items = append(result.Items, c)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *memoryCampaignRepo) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	_, ok := r.byID[entityID]
	return ok, nil
}

func (r *memoryCampaignRepo) RecordDelivery(ctx context.Context, campaignID id.ID, failed bool) error {
	c, ok := r.byID[campaignID]
	if !ok {
		return apperror.NewNotFound("campaign", campaignID.String())
	}
	if failed {
		c.FailedCount++
	} else {
		c.SentCount++
	}
	return nil
}

func (r *memoryCampaignRepo) MarkSent(ctx context.Context, campaignID id.ID) (*Campaign, error) {
	c, ok := r.byID[campaignID]
	if !ok {
		return nil, apperror.NewNotFound("campaign", campaignID.String())
	}
	c.Status = StatusSent
	now := time.Now().UTC()
	c.SentAt = &now
	clone := *c
	return &clone, nil
}

type memorySegmentRepo struct {
	byID map[id.ID]*segment.Segment
}

func (r *memorySegmentRepo) Create(ctx context.Context, s *segment.Segment) error {
	r.byID[s.ID] = s
	return nil
}

func (r *memorySegmentRepo) GetByID(ctx context.Context, entityID id.ID) (*segment.Segment, error) {
	s, ok := r.byID[entityID]
	if !ok {
		return nil, apperror.NewNotFound("segment", entityID.String())
	}
	return s, nil
}

func (r *memorySegmentRepo) Update(ctx context.Context, s *segment.Segment) error {
	r.byID[s.ID] = s
	return nil
}

func (r *memorySegmentRepo) Delete(ctx context.Context, entityID id.ID) error {
	delete(r.byID, entityID)
	return nil
}

func (r *memorySegmentRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*segment.Segment], error) {
	return domain.ListResult[*segment.Segment]{}, nil
}

func (r *memorySegmentRepo) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	_, ok := r.byID[entityID]
	return ok, nil
}

func (r *memorySegmentRepo) GetByName(ctx context.Context, name string) (*segment.Segment, error) {
	for _, s := range r.byID {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("segment", name)
}

type memoryContactRepo struct {
	contacts []*contact.Contact
}

func (r *memoryContactRepo) Create(ctx context.Context, c *contact.Contact) error {
	r.contacts = append(r.contacts, c)
	return nil
}

func (r *memoryContactRepo) GetByID(ctx context.Context, entityID id.ID) (*contact.Contact, error) {
	for _, c := range r.contacts {
		if c.ID == entityID {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("contact", entityID.String())
}

func (r *memoryContactRepo) Update(ctx context.Context, c *contact.Contact) error { return nil }
func (r *memoryContactRepo) Delete(ctx context.Context, entityID id.ID) error     { return nil }

func (r *memoryContactRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*contact.Contact], error) {
	return domain.ListResult[*contact.Contact]{}, nil
}

func (r *memoryContactRepo) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return false, nil
}

func (r *memoryContactRepo) GetByEmail(ctx context.Context, email string) (*contact.Contact, error) {
	for _, c := range r.contacts {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("contact", email)
}

func (r *memoryContactRepo) ListAll(ctx context.Context) ([]*contact.Contact, error) {
	return r.contacts, nil
}

type captureDispatcher struct {
	jobs []DeliveryJob
}

func (d *captureDispatcher) EnqueueDeliveries(ctx context.Context, campaignID id.ID, jobs []DeliveryJob) error {
	d.jobs = append(d.jobs, jobs...)
	return nil
}

type fakeMailer struct {
	failFor map[string]bool
	sent    []Message
}

func (m *fakeMailer) Send(ctx context.Context, msg Message) error {
	if m.failFor[msg.To] {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

// --- Fixture ---

type fixture struct {
	svc        *Service
	repo       *memoryCampaignRepo
	dispatcher *captureDispatcher
	mailer     *fakeMailer
	segmentID  id.ID
}

// newFixture wires a campaign service over in-memory stores with one segment
// ("country equals us") and the given contacts.
func newFixture(t *testing.T, contacts ...*contact.Contact) *fixture {
	t.Helper()

	cat := segment.DefaultCatalog()
	segRepo := &memorySegmentRepo{byID: make(map[id.ID]*segment.Segment)}
	contactRepo := &memoryContactRepo{contacts: contacts}

	contactService := contact.NewService(contactRepo, passthroughTx{})
	segmentService := segment.NewService(segRepo, passthroughTx{}, cat, contactService)

	seg := segment.NewSegment(cat, "US audience")
	seg.Rules = segment.RuleGroup{
		ID: "g", Operator: segment.GroupAnd,
		Conditions: []segment.Condition{
			{ID: "c1", Field: "country", Operator: segment.OpEquals, Value: segment.StringValue("us")},
		},
	}
	require.NoError(t, segmentService.Create(context.Background(), seg))

	repo := newMemoryCampaignRepo()
	dispatcher := &captureDispatcher{}
	mailer := &fakeMailer{failFor: make(map[string]bool)}

	svc := NewService(repo, passthroughTx{}, segmentService, contactRepo, dispatcher, mailer)

	return &fixture{
		svc:        svc,
		repo:       repo,
		dispatcher: dispatcher,
		mailer:     mailer,
		segmentID:  seg.ID,
	}
}

func usContact(email string) *contact.Contact {
	c := contact.NewContact(email)
	c.Country = "us"
	return c
}

func (f *fixture) draftCampaign(t *testing.T) *Campaign {
	t.Helper()
	c := NewCampaign("Launch", f.segmentID)
	c.Subject = "Hello"
	c.FromEmail = "hello@pulsecrm.io"
	require.NoError(t, f.svc.Create(context.Background(), c))
	return c
}

// --- Tests ---

func TestServiceCreate_RequiresExistingSegment(t *testing.T) {
	f := newFixture(t)

	c := NewCampaign("Launch", id.New())
	c.Subject = "Hello"
	c.FromEmail = "hello@pulsecrm.io"

	err := f.svc.Create(context.Background(), c)
	assert.True(t, apperror.IsNotFound(err))
}

func TestServiceAudience(t *testing.T) {
	ctx := context.Background()

	unsubscribed := usContact("gone@x.io")
	unsubscribed.Subscribed = false

	f := newFixture(t, usContact("a@x.io"), unsubscribed, contact.NewContact("de@x.io"))
	c := f.draftCampaign(t)

	audience, err := f.svc.Audience(ctx, c.ID)
	require.NoError(t, err)

	// Unsubscribed contacts still match the segment; only dispatch skips them.
	assert.Len(t, audience, 2)
}

func TestServiceSend(t *testing.T) {
	ctx := context.Background()

	unsubscribed := usContact("gone@x.io")
	unsubscribed.Subscribed = false

	f := newFixture(t, usContact("a@x.io"), usContact("b@x.io"), unsubscribed)
	c := f.draftCampaign(t)

	sent, err := f.svc.Send(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusSending, sent.Status)
	assert.Equal(t, 2, sent.Recipients, "unsubscribed contacts are not queued")
	require.Len(t, f.dispatcher.jobs, 2)
	assert.Equal(t, c.ID, f.dispatcher.jobs[0].CampaignID)

	// A second send is rejected.
	_, err = f.svc.Send(ctx, c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been sent")
}

func TestServiceSend_EmptyAudience(t *testing.T) {
	f := newFixture(t, contact.NewContact("de@x.io"))
	c := f.draftCampaign(t)

	_, err := f.svc.Send(context.Background(), c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subscribed contacts")
}

func TestServiceDeliver(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, usContact("a@x.io"), usContact("b@x.io"))
	c := f.draftCampaign(t)

	_, err := f.svc.Send(ctx, c.ID)
	require.NoError(t, err)

	f.mailer.failFor["b@x.io"] = true

	for _, job := range f.dispatcher.jobs {
		require.NoError(t, f.svc.Deliver(ctx, job), "mailer failures must not fail the job")
	}

	final, err := f.svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, final.Status)
	assert.Equal(t, 1, final.SentCount)
	assert.Equal(t, 1, final.FailedCount)
	assert.NotNil(t, final.SentAt)
	assert.Len(t, f.mailer.sent, 1)
}

func TestServiceUpdate_BlockedAfterSend(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, usContact("a@x.io"))
	c := f.draftCampaign(t)

	_, err := f.svc.Send(ctx, c.ID)
	require.NoError(t, err)

	sent, err := f.svc.GetByID(ctx, c.ID)
	require.NoError(t, err)

	sent.Name = "Renamed"
	err = f.svc.Update(ctx, sent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer be modified")

	err = f.svc.Delete(ctx, sent.ID)
	require.Error(t, err)
}
