package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/engenium/intentd/internal/classify"
	"github.com/engenium/intentd/internal/config"
	"github.com/engenium/intentd/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the intent classification service",
		Long: `Run the HTTP classification service backed by the generation backend.

The service starts even when the backend is unreachable: readiness is
reported on / and /health, and individual requests carry their own timeouts
and error handling.

Endpoints:
  GET  /              - Health check
  GET  /health        - Detailed health check
  POST /classify      - Classify a single prompt
  POST /batch-label   - Classify an ordered list of prompts
  GET  /intents       - Known intent categories
  GET  /ollama/models - Backend model list`,
		RunE: runServe,
	}

	cmd.Flags().String("address", "", "listen address (host:port)")
	cmd.Flags().String("backend-url", "", "generation backend base URL")
	cmd.Flags().String("model", "", "required model name")

	_ = viper.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("backend.url", cmd.Flags().Lookup("backend-url"))
	_ = viper.BindPFlag("backend.model", cmd.Flags().Lookup("model"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	svc := server.New(server.Config{
		Backend:    backend,
		AuditPath:  config.ExpandPath(cfg.Audit.Path),
		Model:      cfg.Backend.Model,
		BackendURL: cfg.Backend.URL,
		Timeout:    cfg.Backend.Timeout,
	})

	return svc.Start(ctx, cfg.Server.Address)
}
