package contact

import (
	"context"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/core/tx"
	"pulsecrm/internal/domain"
	"pulsecrm/internal/domain/audit"
	"pulsecrm/internal/domain/segment"
)

// Service provides business logic for the Contact list.
// Uses composition with domain.EntityService for common CRUD operations.
type Service struct {
	*domain.EntityService[*Contact]
	repo Repository
}

// NewService creates a new contact service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewEntityService(domain.EntityServiceConfig[*Contact]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "contact",
	})

	svc := &Service{
		EntityService: base,
		repo:          repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkEmailUnique)
	base.Hooks().On(domain.BeforeUpdate, svc.checkEmailUnique)
	base.Hooks().On(domain.BeforeCreate, func(ctx context.Context, c *Contact) error {
		return audit.EnrichCreatedBy(ctx, c)
	})
	base.Hooks().On(domain.BeforeUpdate, func(ctx context.Context, c *Contact) error {
		return audit.EnrichUpdatedBy(ctx, c)
	})

	return svc
}

// checkEmailUnique rejects a second contact with the same email.
func (s *Service) checkEmailUnique(ctx context.Context, c *Contact) error {
	existing, err := s.repo.GetByEmail(ctx, c.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("contact", "email", c.Email)
	}
	return nil
}

// GetByEmail retrieves a contact by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Contact, error) {
	return s.repo.GetByEmail(ctx, email)
}

// AddTag appends a tag to the contact if not already present.
func (s *Service) AddTag(ctx context.Context, contactID id.ID, tag string) (*Contact, error) {
	if tag == "" {
		return nil, apperror.NewValidation("tag is required").WithDetail("field", "tag")
	}
	c, err := s.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if c.HasTag(tag) {
		return c, nil
	}
	c.Tags = append(c.Tags, tag)
	if err := s.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveTag removes a tag from the contact.
func (s *Service) RemoveTag(ctx context.Context, contactID id.ID, tag string) (*Contact, error) {
	c, err := s.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	if len(tags) == len(c.Tags) {
		return c, nil
	}
	c.Tags = tags
	if err := s.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListRecords implements segment.RecordSource: the full contact list in
// evaluator shape.
func (s *Service) ListRecords(ctx context.Context) ([]segment.Record, error) {
	contacts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]segment.Record, len(contacts))
	for i, c := range contacts {
		records[i] = c.Record()
	}
	return records, nil
}
