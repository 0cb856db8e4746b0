package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeBackend lets health tests control the model list.
type fakeBackend struct {
	listErr error
	models  []string
}

func (f *fakeBackend) Generate(context.Context, string, GenerateOptions) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeBackend) ListModels(context.Context) ([]string, error) {
	return f.models, f.listErr
}

func TestCheckHealth_Ready(t *testing.T) {
	ready, detail := CheckHealth(context.Background(), &fakeBackend{models: []string{"mistral:latest"}}, "mistral")
	assert.True(t, ready)
	assert.Contains(t, detail, "ready")
}

func TestCheckHealth_ModelMissing(t *testing.T) {
	ready, detail := CheckHealth(context.Background(), &fakeBackend{models: []string{"llama3.2:3b"}}, "mistral")
	assert.False(t, ready)
	assert.Contains(t, detail, "not found")
	// The diagnosis enumerates what is actually loaded.
	assert.Contains(t, detail, "llama3.2:3b")
}

func TestCheckHealth_Unreachable(t *testing.T) {
	ready, detail := CheckHealth(context.Background(), &fakeBackend{listErr: errors.New("connection refused")}, "mistral")
	assert.False(t, ready)
	assert.True(t, strings.HasPrefix(detail, "cannot connect"))
}
