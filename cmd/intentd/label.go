package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/engenium/intentd/internal/config"
	"github.com/engenium/intentd/internal/labeler"
	"github.com/engenium/intentd/internal/storage"
)

func labelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label all unlabeled intent records",
		Long: `Label every record still missing an inferred intent.

Each record is classified through the running classification service with
retries and exponential backoff. Records the service cannot label are
skipped, never guessed, and stay eligible for a future pass, so the command
is safe to re-run.`,
		RunE: runLabel,
	}

	cmd.Flags().String("endpoint", "", "classification service base URL")
	cmd.Flags().Int("max-retries", 0, "attempts per record before skipping")

	_ = viper.BindPFlag("labeler.endpoint", cmd.Flags().Lookup("endpoint"))
	_ = viper.BindPFlag("labeler.max_retries", cmd.Flags().Lookup("max-retries"))

	return cmd
}

func runLabel(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	store, err := storage.NewSQLiteStore(config.ExpandPath(cfg.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if migrateErr := store.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	client, err := labeler.NewClient(labeler.ClientConfig{
		Endpoint:   cfg.Labeler.Endpoint,
		MaxRetries: cfg.Labeler.MaxRetries,
		Timeout:    cfg.Labeler.Timeout,
		RetryDelay: cfg.Labeler.RetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create classification client: %w", err)
	}

	summary, err := labeler.New(store, client).LabelAll(ctx)
	if err != nil {
		return fmt.Errorf("labeling failed: %w", err)
	}

	slog.Info("Labeling complete",
		"attempted", summary.Attempted,
		"labeled", summary.Labeled,
		"skipped", summary.Skipped)

	return nil
}
