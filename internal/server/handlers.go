package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/engenium/intentd/internal/common"
	"github.com/engenium/intentd/internal/model"
)

// handleRoot reports basic readiness.
// GET /
func (s *Service) handleRoot(c echo.Context) error {
	ready, detail := s.CheckHealth(c.Request().Context())
	status := "healthy"
	if !ready {
		status = "warning"
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":        "Intent Classifier API",
		"status":         status,
		"backend_status": detail,
		"model":          s.model,
	})
}

// handleHealth reports detailed readiness and diagnostics. Always 200: a
// degraded backend is reported, not refused.
// GET /health
func (s *Service) handleHealth(c echo.Context) error {
	ready, detail := s.CheckHealth(c.Request().Context())
	status := "healthy"
	if !ready {
		status = "degraded"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         status,
		"service":        "Intent Classifier",
		"backend_status": detail,
		"valid_intents":  ValidIntents,
		"model":          s.model,
		"backend_url":    s.backendURL,
	})
}

// handleClassify classifies a single prompt.
// POST /classify
func (s *Service) handleClassify(c echo.Context) error {
	var req model.ClassificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "prompt cannot be empty"})
	}

	temperature := clampTemperature(req.Temperature)
	if req.SystemPrompt == "" {
		req.SystemPrompt = defaultSystemPrompt
	}

	start := time.Now()
	intent, raw, err := s.classifyPrompt(c.Request().Context(), req.Prompt, temperature)
	if err != nil {
		return s.backendError(c, err)
	}

	s.writeAudit(req.Prompt, intent)

	return c.JSON(http.StatusOK, model.ClassificationResponse{
		Intent:         intent,
		ProcessingTime: time.Since(start).Seconds(),
		RawResponse:    raw,
	})
}

// handleBatchLabel classifies an ordered list of prompts. Results are
// positional: each element succeeds or fails independently, and one failure
// never aborts the batch.
// POST /batch-label
func (s *Service) handleBatchLabel(c echo.Context) error {
	var prompts []string
	if err := c.Bind(&prompts); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "body must be a list of prompts"})
	}

	results := make([]model.BatchResult, 0, len(prompts))
	for _, prompt := range prompts {
		if strings.TrimSpace(prompt) == "" {
			results = append(results, model.BatchResult{Input: prompt, Error: "prompt cannot be empty"})
			continue
		}

		intent, _, err := s.classifyPrompt(c.Request().Context(), prompt, defaultTemperature)
		if err != nil {
			results = append(results, model.BatchResult{Input: prompt, Error: err.Error()})
			continue
		}

		s.writeAudit(prompt, intent)
		results = append(results, model.BatchResult{Input: prompt, Intent: intent})
	}

	return c.JSON(http.StatusOK, results)
}

// handleIntents lists the known intent categories.
// GET /intents
func (s *Service) handleIntents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"valid_intents": ValidIntents})
}

// handleModels proxies the backend's model list.
// GET /ollama/models
func (s *Service) handleModels(c echo.Context) error {
	models, err := s.backend.ListModels(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"detail": fmt.Sprintf("backend connection failed: %v", err),
		})
	}
	return c.JSON(http.StatusOK, map[string][]string{"models": models})
}

// backendError maps a backend fault onto a structured HTTP error response.
func (s *Service) backendError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrBackendTimeout):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"detail": "backend request timeout"})
	case errors.Is(err, common.ErrBackendUnavailable):
		return c.JSON(http.StatusBadGateway, map[string]string{
			"detail": fmt.Sprintf("backend connection failed: %v", err),
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"detail": fmt.Sprintf("classification failed: %v", err),
		})
	}
}
