package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/xtlz/xtlz-english/internal/config"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
)

// runtime is what every subcommand needs before it can do its work.
type runtime struct {
	config *config.Config
	logger *slog.Logger
}

// rootOptions holds the persistent flags.
type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "xtlz",
		Short: "Spaced repetition trainer for English words, phrases and grammar rules",
		Long: `xtlz serves a single learner's collection of English vocabulary cards and
grammar rules over HTTP, schedules reviews, and can draft new content with a
language model.

Settings come from config.yaml (or --config) and XTLZ_* environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newDueCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
	)

	return cmd
}

// load reads the configuration and builds a logger writing to the
// command's stderr, so command output on stdout stays clean.
func (o *rootOptions) load(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: o.configFile})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l := logger.New(cmd.ErrOrStderr(), cfg.Server)
	l.Debug("configuration loaded",
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.Int("port", cfg.Server.Port))

	return &runtime{config: cfg, logger: l}, nil
}

// withApp loads the runtime, opens the application and runs fn with it.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *application) error) error {
	rt, err := o.load(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := newApplication(ctx, rt.config, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return fn(ctx, app)
}
