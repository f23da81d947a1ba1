package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain/campaign"
	"pulsecrm/internal/infrastructure/storage/postgres"
)

// CampaignRepo implements campaign.Repository.
type CampaignRepo struct {
	*BaseRepo[*campaign.Campaign]
}

// Compile-time interface check.
var _ campaign.Repository = (*CampaignRepo)(nil)

// NewCampaignRepo creates a new campaign repository.
func NewCampaignRepo(txManager *postgres.TxManager) *CampaignRepo {
	return &CampaignRepo{
		BaseRepo: NewBaseRepo(BaseRepoConfig[*campaign.Campaign]{
			TxManager:  txManager,
			TableName:  "campaigns",
			SelectCols: postgres.ExtractDBColumns[campaign.Campaign](),
			SearchCols: []string{"name", "subject"},
			NewFn:      func() *campaign.Campaign { return &campaign.Campaign{} },
		}),
	}
}

// RecordDelivery atomically bumps the sent or failed counter. Counters are
// updated in SQL, not read-modify-write, because deliveries run concurrently.
func (r *CampaignRepo) RecordDelivery(ctx context.Context, campaignID id.ID, failed bool) error {
	col := "sent_count"
	if failed {
		col = "failed_count"
	}

	q := r.Builder().
		Update("campaigns").
		Set(col, squirrel.Expr(col+" + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": campaignID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("campaign", campaignID.String())
	}

	return nil
}

// MarkSent transitions the campaign to sent. The WHERE guard keeps the
// transition idempotent when two workers finish the last deliveries at once.
func (r *CampaignRepo) MarkSent(ctx context.Context, campaignID id.ID) (*campaign.Campaign, error) {
	q := r.Builder().
		Update("campaigns").
		Set("status", campaign.StatusSent).
		Set("sent_at", time.Now().UTC()).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": campaignID}).
		Where(squirrel.Eq{"status": campaign.StatusSending})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("mark sent: %w", err)
	}

	return r.GetByID(ctx, campaignID)
}
