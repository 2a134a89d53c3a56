package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xtlz/xtlz-english/internal/domain"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		skipMigrate bool
		skipSeed    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return root.withApp(cmd, func(ctx context.Context, app *application) error {
				if !skipMigrate {
					migrator, err := app.migrator()
					if err != nil {
						return err
					}
					if err := migrator.Up(ctx); err != nil {
						return err
					}
				}
				if !skipSeed {
					if _, err := app.collectionService.SeedIfEmpty(ctx); err != nil {
						return err
					}
				}
				return app.serve(ctx)
			})
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not add the starter collection to an empty database")

	return cmd
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|reset|version]",
		Short:     "Manage database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "reset", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, app *application) error {
				migrator, err := app.migrator()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				switch args[0] {
				case "up":
					err = migrator.Up(ctx)
				case "down":
					err = migrator.Down(ctx)
				case "reset":
					err = migrator.Reset(ctx)
				case "version":
					var version int64
					version, err = migrator.Version(ctx)
					if err == nil {
						fmt.Fprintln(out, version)
					}
					return err
				case "status":
					statuses, err := migrator.Status(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tSTATE\tFILE")
					for _, s := range statuses {
						state := "pending"
						if s.Applied {
							state = "applied"
						}
						fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, state, s.Path)
					}
					return w.Flush()
				}
				if err != nil {
					return err
				}

				version, err := migrator.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "database at version %d\n", version)
				return nil
			})
		},
	}
}

func newDueCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show the items due for review now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withApp(cmd, func(ctx context.Context, app *application) error {
				batch, err := app.reviewService.NextBatch(ctx, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(batch.Items) == 0 {
					fmt.Fprintln(out, "Nothing to review right now.")
					return nil
				}

				fmt.Fprintf(out, "%d of %d due items:\n\n", len(batch.Items), batch.DueCount)
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tITEM")
				for _, item := range batch.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.Kind, item.State().Status, itemLabel(item.Card, item.Rule))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items (0 uses the configured batch size)")

	return cmd
}

func itemLabel(card *domain.Card, rule *domain.Rule) string {
	switch {
	case card != nil && card.Back != "":
		return card.Front + " - " + card.Back
	case card != nil:
		return card.Front
	case rule != nil:
		return rule.Title
	default:
		return ""
	}
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole collection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withApp(cmd, func(ctx context.Context, app *application) error {
				collection, err := app.collectionService.Export(ctx)
				if err != nil {
					return err
				}

				data, err := json.MarshalIndent(collection, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode collection: %w", err)
				}
				data = append(data, '\n')

				if outPath == "" || outPath == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(outPath, data, 0o600); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d cards and %d rules to %s\n",
					len(collection.Cards), len(collection.Rules), outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a collection exported by the export command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			var collection domain.Collection
			if err := json.Unmarshal(data, &collection); err != nil {
				return fmt.Errorf("failed to decode collection: %w", err)
			}

			return root.withApp(cmd, func(ctx context.Context, app *application) error {
				if err := app.collectionService.Import(ctx, &collection, replace); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards and %d rules\n",
					len(collection.Cards), len(collection.Rules))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "delete items that are not in the file")

	return cmd
}
