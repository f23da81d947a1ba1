package repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/infrastructure/storage/postgres"
)

// ContactRepo implements contact.Repository.
type ContactRepo struct {
	*BaseRepo[*contact.Contact]
}

// Compile-time interface check.
var _ contact.Repository = (*ContactRepo)(nil)

// NewContactRepo creates a new contact repository.
func NewContactRepo(txManager *postgres.TxManager) *ContactRepo {
	return &ContactRepo{
		BaseRepo: NewBaseRepo(BaseRepoConfig[*contact.Contact]{
			TxManager:  txManager,
			TableName:  "contacts",
			SelectCols: postgres.ExtractDBColumns[contact.Contact](),
			SearchCols: []string{"email", "first_name", "last_name", "company"},
			NewFn:      func() *contact.Contact { return &contact.Contact{} },
		}),
	}
}

// GetByEmail retrieves a contact by email.
func (r *ContactRepo) GetByEmail(ctx context.Context, email string) (*contact.Contact, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[contact.Contact]()...).
		From("contacts").
		Where(squirrel.Eq{"email": email}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListAll returns every contact. The evaluator runs in memory over the full
// list, so no pagination here.
func (r *ContactRepo) ListAll(ctx context.Context) ([]*contact.Contact, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[contact.Contact]()...).
		From("contacts").
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var contacts []*contact.Contact
	if err := pgxscan.Select(ctx, r.Querier(ctx), &contacts, sql, args...); err != nil {
		return nil, fmt.Errorf("list all contacts: %w", err)
	}

	return contacts, nil
}
