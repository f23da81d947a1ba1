package campaign

import (
	"context"
	"fmt"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/core/tx"
	"pulsecrm/internal/domain"
	"pulsecrm/internal/domain/audit"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/domain/segment"
	"pulsecrm/pkg/logger"
)

// Service provides business logic for campaigns: CRUD, audience resolution
// through the segment evaluator, and delivery processing.
type Service struct {
	*domain.EntityService[*Campaign]
	repo       Repository
	segments   *segment.Service
	contacts   contact.Repository
	dispatcher Dispatcher
	mailer     Mailer
	txManager  tx.Manager
}

// NewService creates a new campaign service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	segments *segment.Service,
	contacts contact.Repository,
	dispatcher Dispatcher,
	mailer Mailer,
) *Service {
	base := domain.NewEntityService(domain.EntityServiceConfig[*Campaign]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "campaign",
	})

	svc := &Service{
		EntityService: base,
		repo:          repo,
		segments:      segments,
		contacts:      contacts,
		dispatcher:    dispatcher,
		mailer:        mailer,
		txManager:     txManager,
	}

	base.Hooks().On(domain.BeforeCreate, svc.requireSegment)
	base.Hooks().On(domain.BeforeUpdate, svc.requireDraft)
	base.Hooks().On(domain.BeforeDelete, svc.requireDraft)
	base.Hooks().On(domain.BeforeCreate, func(ctx context.Context, c *Campaign) error {
		return audit.EnrichCreatedBy(ctx, c)
	})
	base.Hooks().On(domain.BeforeUpdate, func(ctx context.Context, c *Campaign) error {
		return audit.EnrichUpdatedBy(ctx, c)
	})

	return svc
}

// requireSegment verifies the targeted segment exists.
func (s *Service) requireSegment(ctx context.Context, c *Campaign) error {
	if _, err := s.segments.GetByID(ctx, c.SegmentID); err != nil {
		return err
	}
	return nil
}

// requireDraft blocks edits and deletes after a campaign left draft state.
func (s *Service) requireDraft(ctx context.Context, c *Campaign) error {
	if !c.IsDraft() {
		return apperror.NewBusinessRule(apperror.CodeCampaignAlreadySent,
			"campaign can no longer be modified").
			WithDetail("status", string(c.Status))
	}
	return nil
}

// Audience resolves the campaign's segment against the full contact list.
// Unsubscribed contacts are still evaluated (segments are about matching),
// but Send skips them at dispatch time.
func (s *Service) Audience(ctx context.Context, campaignID id.ID) ([]*contact.Contact, error) {
	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return s.resolveAudience(ctx, c)
}

func (s *Service) resolveAudience(ctx context.Context, c *Campaign) ([]*contact.Contact, error) {
	seg, err := s.segments.GetByID(ctx, c.SegmentID)
	if err != nil {
		return nil, err
	}

	all, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	eval := segment.NewEvaluator(s.segments.Catalog())
	matched := make([]*contact.Contact, 0, len(all))
	for _, ct := range all {
		if eval.Evaluate(seg.Rules, ct.Record()) {
			matched = append(matched, ct)
		}
	}
	return matched, nil
}

// Send freezes the audience, flips the campaign to sending, and enqueues one
// delivery job per subscribed contact — all in one transaction, so a crash
// cannot leave a sending campaign without queued deliveries.
func (s *Service) Send(ctx context.Context, campaignID id.ID) (*Campaign, error) {
	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsDraft() {
		return nil, apperror.NewBusinessRule(apperror.CodeCampaignAlreadySent,
			"campaign has already been sent").
			WithDetail("status", string(c.Status))
	}

	audience, err := s.resolveAudience(ctx, c)
	if err != nil {
		return nil, err
	}

	jobs := make([]DeliveryJob, 0, len(audience))
	for _, ct := range audience {
		if !ct.Subscribed {
			continue
		}
		jobs = append(jobs, DeliveryJob{
			CampaignID: c.ID,
			ContactID:  ct.ID,
			Email:      ct.Email,
			Name:       ct.FullName(),
		})
	}
	if len(jobs) == 0 {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"segment matches no subscribed contacts").
			WithDetail("segment_id", c.SegmentID.String())
	}

	c.Status = StatusSending
	c.Recipients = len(jobs)
	c.SentCount = 0
	c.FailedCount = 0

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update campaign: %w", err)
		}
		if err := s.dispatcher.EnqueueDeliveries(ctx, c.ID, jobs); err != nil {
			return fmt.Errorf("enqueue deliveries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "campaign dispatch queued",
		"campaign_id", c.ID.String(),
		"recipients", c.Recipients,
	)
	return c, nil
}

// Deliver processes one queued delivery job: sends the email through the
// mailer, records the outcome, and finalizes the campaign when all
// deliveries are accounted for. Called by the dispatch worker.
func (s *Service) Deliver(ctx context.Context, job DeliveryJob) error {
	c, err := s.GetByID(ctx, job.CampaignID)
	if err != nil {
		return err
	}

	sendErr := s.mailer.Send(ctx, Message{
		To:        job.Email,
		ToName:    job.Name,
		FromName:  c.FromName,
		FromEmail: c.FromEmail,
		Subject:   c.Subject,
		BodyHTML:  c.BodyHTML,
	})
	if sendErr != nil {
		logger.Warn(ctx, "delivery failed",
			"campaign_id", job.CampaignID.String(),
			"contact_id", job.ContactID.String(),
			"error", sendErr,
		)
	}

	if err := s.repo.RecordDelivery(ctx, c.ID, sendErr != nil); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}

	updated, err := s.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if updated.Status == StatusSending && updated.Finished() {
		if _, err := s.repo.MarkSent(ctx, c.ID); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		logger.Info(ctx, "campaign finished",
			"campaign_id", c.ID.String(),
			"sent", updated.SentCount,
			"failed", updated.FailedCount,
		)
	}

	// The mailer failure is accounted for in failed_count; the job itself
	// succeeded and must not be retried.
	return nil
}
