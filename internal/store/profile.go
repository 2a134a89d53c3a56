package store

import (
	"context"
	"database/sql"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// ProfileStore persists the single learner profile.
type ProfileStore interface {
	// Get returns the saved profile.
	// Returns ErrProfileNotFound if none has been saved yet.
	Get(ctx context.Context) (*domain.Profile, error)

	// Save creates or replaces the profile, daily stats included.
	Save(ctx context.Context, profile domain.Profile) error

	WithTx(tx *sql.Tx) ProfileStore
}
