// Package classify provides the generation backend capability that the
// classification service runs on.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GenerateOptions bound a single generation call.
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	TopK        int
	NumPredict  int
}

// Backend is the generation capability behind the classification service.
// A network-backed implementation serves production; a deterministic static
// one serves tests and offline runs. The two are selected by configuration.
type Backend interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Config holds configuration for constructing a backend.
type Config struct {
	Provider string
	URL      string
	Model    string
	Timeout  time.Duration
}

// New creates a backend based on the configured provider.
func New(cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama", "":
		return newOllamaBackend(cfg)
	case "static":
		return NewStaticBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", cfg.Provider)
	}
}
