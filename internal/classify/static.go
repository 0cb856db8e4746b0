package classify

import (
	"context"
	"strings"
	"sync"
)

// StaticBackend is a deterministic stand-in for the generation backend. It
// labels prompts by keyword so tests and offline runs never need a live
// model server.
type StaticBackend struct {
	calls []string
	mu    sync.Mutex
}

// NewStaticBackend creates a new static backend.
func NewStaticBackend() *StaticBackend {
	return &StaticBackend{calls: make([]string, 0)}
}

// Generate returns a keyword-derived intent phrase.
func (b *StaticBackend) Generate(_ context.Context, prompt string, _ GenerateOptions) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, prompt)
	b.mu.Unlock()

	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "search"):
		return "search product", nil
	case strings.Contains(lower, "add"):
		return "add to cart", nil
	default:
		return "navigate", nil
	}
}

// ListModels reports the single built-in pseudo model.
func (b *StaticBackend) ListModels(context.Context) ([]string, error) {
	return []string{"static"}, nil
}

// Calls returns the prompts seen so far.
func (b *StaticBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}
