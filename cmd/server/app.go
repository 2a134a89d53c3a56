package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xtlz/xtlz-english/internal/api"
	"github.com/xtlz/xtlz-english/internal/config"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/domain/srs"
	"github.com/xtlz/xtlz-english/internal/events"
	"github.com/xtlz/xtlz-english/internal/generation"
	"github.com/xtlz/xtlz-english/internal/platform/gemini"
	"github.com/xtlz/xtlz-english/internal/platform/openai"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
	"github.com/xtlz/xtlz-english/internal/redact"
	"github.com/xtlz/xtlz-english/internal/service"
	"github.com/xtlz/xtlz-english/internal/task"
)

// taskTimeout bounds one background enrichment, retries included.
const taskTimeout = 2 * time.Minute

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db      *sql.DB
	dialect sqlstore.Dialect
	stores  service.Stores

	reviewService     service.ReviewService
	collectionService service.CollectionService
	dashboardService  service.DashboardService

	// taskRunner fills in new cards in the background. It is nil when
	// content generation is disabled.
	taskRunner *task.TaskRunner
}

type appOptions struct {
	generator generation.Generator
}

// appOption customizes newApplication.
type appOption func(*appOptions)

// withGenerator replaces the configured language model provider.
func withGenerator(gen generation.Generator) appOption {
	return func(o *appOptions) {
		o.generator = gen
	}
}

// newApplication opens the database and wires every service. The caller
// must call cleanup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...appOption) (*application, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	db, dialect, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app := &application{config: cfg, logger: logger, db: db, dialect: dialect}
	if err := app.wire(ctx, o); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) wire(ctx context.Context, o appOptions) error {
	cfg := app.config
	level := domain.Level(cfg.Learner.Level)
	profile := domain.NewProfile(cfg.Learner.Name, level)

	cards := sqlstore.NewCardStore(app.db, app.dialect, app.logger)
	rules := sqlstore.NewRuleStore(app.db, app.dialect, app.logger)
	profiles := sqlstore.NewProfileStore(app.db, app.dialect, app.logger)
	app.stores = service.Stores{
		DB:          app.db,
		Cards:       cards,
		Rules:       rules,
		Profiles:    profiles,
		Collections: sqlstore.NewCollectionStore(app.db, cards, rules, profiles, profile, app.logger),
	}

	scheduler := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		WeakInterval:      time.Duration(cfg.SRS.WeakHours) * time.Hour,
		LearningInterval:  time.Duration(cfg.SRS.LearningHours) * time.Hour,
		KnownInterval:     time.Duration(cfg.SRS.KnownHours) * time.Hour,
		GraduationStreak:  cfg.SRS.GraduationStreak,
		DefaultBatchLimit: cfg.SRS.BatchLimit,
	}))

	generator := o.generator
	if generator == nil {
		gen, err := newGenerator(ctx, cfg.LLM, level, app.logger)
		if err != nil {
			return err
		}
		generator = gen
	}

	serviceOpts := []service.Option{service.WithDefaultProfile(profile)}

	var (
		emitter      *events.InMemoryEventEmitter
		eventEmitter events.EventEmitter
	)
	if generator != nil {
		app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
			WorkerCount: cfg.Tasks.WorkerCount,
			QueueSize:   cfg.Tasks.QueueSize,
			TaskTimeout: taskTimeout,
		}, app.logger)
		app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
			app.logger.Warn("background task failed",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.String("error", redact.Error(err)))
		})
		emitter = events.NewInMemoryEventEmitter(app.logger)
		eventEmitter = emitter
	} else {
		generator = generation.Disabled()
	}

	var err error
	app.reviewService, err = service.NewReviewService(app.stores, scheduler, app.logger, serviceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create review service: %w", err)
	}
	app.collectionService, err = service.NewCollectionService(app.stores, generator, eventEmitter, app.logger, serviceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create collection service: %w", err)
	}
	app.dashboardService, err = service.NewDashboardService(app.stores, scheduler, app.logger, serviceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}

	if app.taskRunner != nil {
		factory := task.NewCardEnrichmentTaskFactory(app.collectionService, app.logger)
		app.taskRunner.SetRecovery(task.PendingEnrichmentRecovery(app.collectionService, factory, cfg.Tasks.QueueSize))
		emitter.RegisterHandler(task.NewEnrichmentEventHandler(factory, app.taskRunner, app.logger))
	}

	return nil
}

// newGenerator builds the configured language model generator. It returns
// nil when no provider is configured.
func newGenerator(ctx context.Context, cfg config.LLMConfig, level domain.Level, logger *slog.Logger) (generation.Generator, error) {
	var (
		gen generation.Generator
		err error
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		gen, err = gemini.NewGenerator(ctx, cfg, level, logger)
	case config.ProviderOpenAI:
		gen, err = openai.NewGenerator(cfg, level, logger)
	case config.ProviderNone, "":
		logger.Info("content generation disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.Provider, err)
	}

	logger.Info("content generation enabled",
		slog.String("provider", cfg.Provider),
		slog.Int("requests_per_minute", cfg.RequestsPerMinute))
	return generation.RateLimited(gen, generation.PerMinute(cfg.RequestsPerMinute), 1), nil
}

// migrator returns a migrator for the application's database.
func (app *application) migrator() (*sqlstore.Migrator, error) {
	return sqlstore.NewMigrator(app.db, app.dialect, app.logger)
}

// router returns the HTTP handler for every API route.
func (app *application) router() http.Handler {
	return api.NewRouter(api.Services{
		Review:     app.reviewService,
		Collection: app.collectionService,
		Dashboard:  app.dashboardService,
	}, app.logger)
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
