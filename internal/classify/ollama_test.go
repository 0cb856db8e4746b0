package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engenium/intentd/internal/common"
)

func newTestBackend(t *testing.T, url string) Backend {
	t.Helper()
	backend, err := newOllamaBackend(Config{URL: url, Model: "mistral", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return backend
}

func TestOllamaBackend_Generate(t *testing.T) {
	var gotRequest generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "Add To Cart"})
	}))
	defer srv.Close()

	backend := newTestBackend(t, srv.URL)
	text, err := backend.Generate(context.Background(), "classify this", GenerateOptions{
		Temperature: 0.1,
		TopK:        10,
		TopP:        0.9,
		NumPredict:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Add To Cart", text)

	// The wire format is fixed by the backend contract.
	assert.Equal(t, "mistral", gotRequest.Model)
	assert.Equal(t, "classify this", gotRequest.Prompt)
	assert.False(t, gotRequest.Stream)
	assert.Equal(t, 10, gotRequest.Options.NumPredict)
	assert.Equal(t, 10, gotRequest.Options.TopK)
	assert.InDelta(t, 0.9, gotRequest.Options.TopP, 1e-9)
}

func TestOllamaBackend_GenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := newTestBackend(t, srv.URL)
	_, err := backend.Generate(context.Background(), "classify this", GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBackendError)
}

func TestOllamaBackend_GenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	backend := newTestBackend(t, srv.URL)
	_, err := backend.Generate(context.Background(), "classify this", GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBackendError)
}

func TestOllamaBackend_GenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "too late"})
	}))
	defer srv.Close()

	backend, err := newOllamaBackend(Config{URL: srv.URL, Model: "mistral", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), "classify this", GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBackendTimeout)
}

func TestOllamaBackend_GenerateConnectionRefused(t *testing.T) {
	// Grab a port nobody is listening on.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	backend := newTestBackend(t, url)
	_, err := backend.Generate(context.Background(), "classify this", GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)
}

func TestOllamaBackend_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "mistral:latest"},
				{"name": "llama3.2:3b"},
			},
		})
	}))
	defer srv.Close()

	backend := newTestBackend(t, srv.URL)
	models, err := backend.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral:latest", "llama3.2:3b"}, models)
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon"})
	require.Error(t, err)
}

func TestNew_StaticProvider(t *testing.T) {
	backend, err := New(Config{Provider: "static"})
	require.NoError(t, err)

	text, err := backend.Generate(context.Background(), "click Add to Cart", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "add to cart", text)
}
