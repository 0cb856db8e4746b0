// Package server exposes the intent classification service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/engenium/intentd/internal/classify"
	"github.com/engenium/intentd/internal/model"
)

// ValidIntents enumerates the known intent categories surfaced by /intents
// and /health. Classification output is free text; these are the canonical
// buckets the pseudo-labeling taxonomy recognizes.
var ValidIntents = []string{"search_product", "add_to_cart", "navigate"}

// classificationTemplate wraps the caller's prompt into the fixed instruction
// the backend model answers. The template, not the caller, controls the
// response shape: a short intent phrase with no restatement of the input.
const classificationTemplate = `
You are an expert in understanding user behavior. Given a user message, extract the core intent in a short natural language phrase (not more than 10 words). Be precise and avoid repeating the full message.

Respond only with the intent.

Message: %s
Intent:
`

// defaultSystemPrompt is applied when the caller supplies none.
const defaultSystemPrompt = "Classify the user intent."

// defaultTemperature is used when the caller supplies none.
const defaultTemperature = 0.1

// Service is the classification service: it forwards constructed
// instructions to the generation backend, normalizes replies into intent
// phrases, and appends an audit record per successful call.
type Service struct {
	backend    classify.Backend
	audit      *AuditLog
	model      string
	backendURL string
	timeout    time.Duration
}

// Config holds configuration for constructing a Service.
type Config struct {
	Backend    classify.Backend
	AuditPath  string
	Model      string
	BackendURL string
	Timeout    time.Duration
}

// New creates a classification service.
func New(cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		backend:    cfg.Backend,
		audit:      NewAuditLog(cfg.AuditPath),
		model:      cfg.Model,
		backendURL: cfg.BackendURL,
		timeout:    timeout,
	}
}

// Register attaches the HTTP surface to the given echo instance.
func (s *Service) Register(e *echo.Echo) {
	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)
	e.POST("/classify", s.handleClassify)
	e.POST("/batch-label", s.handleBatchLabel)
	e.GET("/intents", s.handleIntents)
	e.GET("/ollama/models", s.handleModels)
}

// Start runs the HTTP service until the context is canceled. A degraded
// backend at boot only logs a warning; the service still serves requests,
// which carry their own failure handling.
func (s *Service) Start(ctx context.Context, address string) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	s.Register(e)

	ready, detail := s.CheckHealth(ctx)
	if ready {
		slog.Info("generation backend ready", "model", s.model, "detail", detail)
	} else {
		slog.Warn("generation backend not ready; classification requests may fail until it is",
			"detail", detail)
	}

	slog.Info("classification service listening",
		"address", address,
		"backend", s.backendURL,
		"model", s.model)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(address)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// CheckHealth probes the generation backend. Advisory only; never gates the
// classification path.
func (s *Service) CheckHealth(ctx context.Context) (bool, string) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return classify.CheckHealth(probeCtx, s.backend, s.model)
}

// classifyPrompt issues one backend call bound by the service timeout and
// normalizes the reply. It returns the presentation intent and the
// normalized raw text retained for audit.
func (s *Service) classifyPrompt(ctx context.Context, prompt string, temperature float64) (string, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.backend.Generate(callCtx, fmt.Sprintf(classificationTemplate, prompt), classify.GenerateOptions{
		Temperature: temperature,
		TopK:        10,
		TopP:        0.9,
		NumPredict:  10,
	})
	if err != nil {
		return "", "", err
	}

	raw := strings.ToLower(strings.TrimSpace(text))
	return capitalize(raw), raw, nil
}

// writeAudit appends the audit line for a successful classification. Audit
// failures are logged, never propagated: the classification already
// succeeded from the caller's point of view.
func (s *Service) writeAudit(prompt, intent string) {
	if err := s.audit.Append(model.AuditRecord{Input: prompt, Output: intent}); err != nil {
		slog.Error("failed to append audit record", "error", err)
	}
}

// capitalize upper-cases the first rune of an intent phrase for presentation
// ("add to cart" becomes "Add to cart").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// clampTemperature bounds a caller-supplied temperature to [0, 1], applying
// the default when unset.
func clampTemperature(t float64) float64 {
	if t == 0 {
		t = defaultTemperature
	}
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
