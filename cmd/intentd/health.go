package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/engenium/intentd/internal/classify"
	"github.com/engenium/intentd/internal/config"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the generation backend is ready",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	backend, err := classify.New(classify.Config{
		Provider: cfg.Backend.Provider,
		URL:      cfg.Backend.URL,
		Model:    cfg.Backend.Model,
		Timeout:  cfg.Backend.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	ready, detail := classify.CheckHealth(ctx, backend, cfg.Backend.Model)
	if !ready {
		return fmt.Errorf("backend not ready: %s", detail)
	}

	slog.Info("Backend ready", "detail", detail, "url", cfg.Backend.URL)
	return nil
}
