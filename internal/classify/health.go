package classify

import (
	"context"
	"fmt"
	"strings"
)

// CheckHealth probes the generation backend and reports whether the required
// model is loaded. The check is advisory: a degraded result never blocks a
// classification attempt, which carries its own timeout and failure handling.
func CheckHealth(ctx context.Context, backend Backend, model string) (bool, string) {
	models, err := backend.ListModels(ctx)
	if err != nil {
		return false, fmt.Sprintf("cannot connect to backend: %v", err)
	}

	for _, name := range models {
		if strings.Contains(name, model) {
			return true, fmt.Sprintf("backend and %s are ready", model)
		}
	}

	return false, fmt.Sprintf("model %q not found. available models: %v", model, models)
}
