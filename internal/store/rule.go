package store

import (
	"context"
	"database/sql"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// RuleFilter narrows a rule listing. Zero values do not filter.
type RuleFilter struct {
	// Search matches case-insensitively against title and explanation.
	Search        string
	FavoritesOnly bool
	Status        domain.Status
}

// RuleStore defines the interface for grammar rule persistence.
// Its methods mirror CardStore.
type RuleStore interface {
	Create(ctx context.Context, rule *domain.Rule) error
	GetByID(ctx context.Context, id string) (*domain.Rule, error)
	Update(ctx context.Context, rule *domain.Rule) error
	Upsert(ctx context.Context, rule *domain.Rule) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context, filter RuleFilter) ([]domain.Rule, error)
	WithTx(tx *sql.Tx) RuleStore
}
