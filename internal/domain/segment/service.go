package segment

import (
	"context"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/core/tx"
	"pulsecrm/internal/domain"
	"pulsecrm/internal/domain/audit"
)

// Service provides business logic for segments: CRUD plus audience preview.
// Uses composition with domain.EntityService for common CRUD operations.
type Service struct {
	*domain.EntityService[*Segment]
	repo     Repository
	catalog  *Catalog
	contacts RecordSource
}

// PreviewResult is the outcome of evaluating a rule tree against the
// current contact list.
type PreviewResult struct {
	Total   int      `json:"total"`
	Matched int      `json:"matched"`
	Sample  []Record `json:"sample"`
}

// previewSampleSize caps how many matched records a preview returns.
const previewSampleSize = 10

// NewService creates a new segment service.
func NewService(repo Repository, txManager tx.Manager, cat *Catalog, contacts RecordSource) *Service {
	base := domain.NewEntityService(domain.EntityServiceConfig[*Segment]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "segment",
	})

	svc := &Service{
		EntityService: base,
		repo:          repo,
		catalog:       cat,
		contacts:      contacts,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForWrite)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForWrite)
	base.Hooks().On(domain.BeforeCreate, func(ctx context.Context, s *Segment) error {
		audit.EnrichCreatedByDirect(ctx, &s.CreatedBy, &s.UpdatedBy)
		return nil
	})
	base.Hooks().On(domain.BeforeUpdate, func(ctx context.Context, s *Segment) error {
		audit.EnrichUpdatedByDirect(ctx, &s.UpdatedBy)
		return nil
	})

	return svc
}

// Catalog returns the field catalogue the service validates against.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// prepareForWrite validates the rule tree and checks name uniqueness.
func (s *Service) prepareForWrite(ctx context.Context, seg *Segment) error {
	if err := ValidateTree(s.catalog, seg.Rules); err != nil {
		return err
	}

	existing, err := s.repo.GetByName(ctx, seg.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != seg.ID {
		return apperror.NewConflict("segment with this name already exists").
			WithDetail("name", seg.Name)
	}
	return nil
}

// Preview evaluates a rule tree against the full contact list and returns
// match statistics plus a small sample of matched records. The tree does not
// have to be persisted: the editor previews unsaved rules.
func (s *Service) Preview(ctx context.Context, rules RuleGroup) (PreviewResult, error) {
	records, err := s.contacts.ListRecords(ctx)
	if err != nil {
		return PreviewResult{}, err
	}

	eval := NewEvaluator(s.catalog)
	result := PreviewResult{
		Total:  len(records),
		Sample: make([]Record, 0, previewSampleSize),
	}
	for _, rec := range records {
		if !eval.Evaluate(rules, rec) {
			continue
		}
		result.Matched++
		if len(result.Sample) < previewSampleSize {
			result.Sample = append(result.Sample, rec)
		}
	}
	return result, nil
}

// PreviewByID evaluates a persisted segment's rules.
func (s *Service) PreviewByID(ctx context.Context, segmentID id.ID) (PreviewResult, error) {
	seg, err := s.GetByID(ctx, segmentID)
	if err != nil {
		return PreviewResult{}, err
	}
	return s.Preview(ctx, seg.Rules)
}
