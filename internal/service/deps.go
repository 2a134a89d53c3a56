package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/store"
)

// Stores groups the persistence dependencies shared by the services.
type Stores struct {
	// DB begins the transactions that multi-record operations run in.
	DB          store.TxBeginner
	Cards       store.CardStore
	Rules       store.RuleStore
	Profiles    store.ProfileStore
	Collections store.CollectionStore
}

func (s Stores) validate() error {
	switch {
	case s.DB == nil:
		return errors.New("stores: DB cannot be nil")
	case s.Cards == nil:
		return errors.New("stores: Cards cannot be nil")
	case s.Rules == nil:
		return errors.New("stores: Rules cannot be nil")
	case s.Profiles == nil:
		return errors.New("stores: Profiles cannot be nil")
	case s.Collections == nil:
		return errors.New("stores: Collections cannot be nil")
	}
	return nil
}

// withTx returns the item and profile stores bound to tx.
func (s Stores) withTx(tx *sql.Tx) txStores {
	return txStores{
		cards:    s.Cards.WithTx(tx),
		rules:    s.Rules.WithTx(tx),
		profiles: s.Profiles.WithTx(tx),
	}
}

type txStores struct {
	cards    store.CardStore
	rules    store.RuleStore
	profiles store.ProfileStore
}

// Option configures a service.
type Option func(*options)

type options struct {
	now     func() time.Time
	profile domain.Profile
}

func newOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		profile: domain.NewProfile("", domain.DefaultLevel),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDefaultProfile sets the profile used until one has been saved.
func WithDefaultProfile(profile domain.Profile) Option {
	return func(o *options) {
		o.profile = profile
	}
}

// loadProfile returns the saved profile or a copy of fallback.
func loadProfile(ctx context.Context, profiles store.ProfileStore, fallback domain.Profile) (domain.Profile, error) {
	profile, err := profiles.Get(ctx)
	if errors.Is(err, store.ErrProfileNotFound) {
		p := fallback
		p.Stats = append([]domain.DailyStat{}, fallback.Stats...)
		return p, nil
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return *profile, nil
}

// recordActivity adds to today's counters and saves the profile.
func recordActivity(
	ctx context.Context,
	profiles store.ProfileStore,
	fallback domain.Profile,
	added, repeated int,
	now time.Time,
) error {
	profile, err := loadProfile(ctx, profiles, fallback)
	if err != nil {
		return err
	}
	return profiles.Save(ctx, profile.RecordActivity(added, repeated, now))
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}
