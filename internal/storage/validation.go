package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/engenium/intentd/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrEmptySlice    = errors.New("slice cannot be empty")
	ErrInvalidIntent = errors.New("invalid intent record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateIntents validates a slice of intent records.
func validateIntents(records []model.IntentRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	for i, record := range records {
		if err := validateIntent(&record); err != nil {
			return fmt.Errorf("intent record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateIntent validates a single intent record. A label without a source
// (or the reverse) would break the provenance invariant, so both are checked
// together.
func validateIntent(record *model.IntentRecord) error {
	if record.Domain == "" {
		return fmt.Errorf("%w: missing domain", ErrInvalidIntent)
	}
	if record.ActionText == "" {
		return fmt.Errorf("%w: missing action text", ErrInvalidIntent)
	}
	if (record.InferredIntent != "") != (record.LabelSource != model.LabelSourceUnset) {
		return fmt.Errorf("%w: inferred intent and label source must be set together", ErrInvalidIntent)
	}
	return nil
}
