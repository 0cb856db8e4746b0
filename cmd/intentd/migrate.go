package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/engenium/intentd/internal/config"
	"github.com/engenium/intentd/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the intent database schema up to date",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
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

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database schema up to date", "version", storage.ExpectedSchemaVersion)
	return nil
}
