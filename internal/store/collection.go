package store

import (
	"context"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// CollectionStore loads and saves the learner's whole collection as one
// snapshot. Items are stored verbatim: a saved collection loads back
// field-for-field equal.
type CollectionStore interface {
	// Load returns every card, rule and the profile.
	Load(ctx context.Context) (*domain.Collection, error)

	// Save writes the collection atomically. With replace, items missing
	// from the snapshot are deleted; otherwise they are kept and items with
	// matching IDs are overwritten.
	Save(ctx context.Context, collection *domain.Collection, replace bool) error
}
