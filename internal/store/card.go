package store

import (
	"context"
	"database/sql"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// CardFilter narrows a card listing. Zero values do not filter.
type CardFilter struct {
	// Search matches case-insensitively against front and back.
	Search        string
	FavoritesOnly bool
	Status        domain.Status
	Kind          domain.ItemKind
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. The card is validated first.
	// Returns ErrDuplicate if a card with the same ID exists.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id string) (*domain.Card, error)

	// Update overwrites every stored field of an existing card, review state
	// included. Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Upsert creates the card or overwrites the existing row with the same ID.
	Upsert(ctx context.Context, card *domain.Card) error

	// Delete removes a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every card.
	DeleteAll(ctx context.Context) error

	// List returns the cards matching the filter, newest first.
	List(ctx context.Context, filter CardFilter) ([]domain.Card, error)

	// ListNeedingEnrichment returns up to limit cards that have no back text yet.
	ListNeedingEnrichment(ctx context.Context, limit int) ([]domain.Card, error)

	// CountByStatus returns the number of cards in each review status.
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)

	// WithTx returns a new CardStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service),
	// for example through RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
