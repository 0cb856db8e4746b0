// Package labeler drives batch intent labeling against the classification
// service.
package labeler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/engenium/intentd/internal/common"
	"github.com/engenium/intentd/internal/model"
)

// Client calls the classification service, absorbing transient failures with
// exponential backoff. Once every attempt is spent it reports failure rather
// than inventing a label: an unlabeled record is preferable to a mislabeled
// one.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	retryDelay time.Duration
}

// ClientConfig holds configuration for constructing a Client.
type ClientConfig struct {
	Endpoint   string
	MaxRetries int
	Timeout    time.Duration
	RetryDelay time.Duration
}

// NewClient creates a resilient classification client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: classification service endpoint", common.ErrMissingConfig)
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Classify labels a single prompt. ok is false once all attempts are
// exhausted; the caller should skip the record.
func (c *Client) Classify(ctx context.Context, prompt string) (string, bool) {
	var intent string

	err := common.WithRetry(ctx, func() error {
		result, err := c.attempt(ctx, prompt)
		if err != nil {
			// Timeouts, connection failures, non-200 responses and
			// undecodable bodies all share the same backoff schedule.
			return &common.RetryableError{Err: err, Retryable: true}
		}
		intent = result
		return nil
	}, common.RetryOptions{
		MaxAttempts:  c.maxRetries,
		InitialDelay: c.retryDelay,
		Multiplier:   2.0,
	})
	if err != nil {
		slog.Warn("classification failed, giving up", "error", err)
		return "", false
	}

	return intent, true
}

// attempt issues one request to the classification service.
func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(model.ClassificationRequest{
		Prompt:      prompt,
		MaxTokens:   50,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/classify", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", fmt.Errorf("%w: %v", common.ErrBackendTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", common.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", common.ErrBackendError, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", common.ErrBackendError, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return extractIntent(respBody), nil
}

// extractIntent applies the ordered response-extraction policy: prefer the
// "intent" field, then "response", then "text", then the first whitespace
// token of the stringified body, then the literal "navigate". Downstream
// labels depend on this exact order, so it must not change.
func extractIntent(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"intent", "response", "text"} {
			if value, ok := fields[key]; ok {
				if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
					return normalize(s)
				}
			}
		}
	}

	if tokens := strings.Fields(string(body)); len(tokens) > 0 {
		return normalize(tokens[0])
	}

	return "navigate"
}

// normalize trims and lower-cases extracted intent text.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
