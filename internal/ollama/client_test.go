package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOllama(t *testing.T, models []ModelInfo) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ListModelsResponse{Models: models})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Model == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		enc := json.NewEncoder(w)
		enc.Encode(GenerateResponse{Model: req.Model, Response: "Revenue "})
		enc.Encode(GenerateResponse{Model: req.Model, Response: "grew.", Done: true, EvalCount: 2})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerateJoinsLines(t *testing.T) {
	ts := fakeOllama(t, nil)
	c := NewClient(ts.URL+"/", "llama3.2")

	out, err := c.Generate(context.Background(), "What happened?")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew.", out)
}

func TestGenerateWithoutModel(t *testing.T) {
	_, err := NewClient("", "").Generate(context.Background(), "hi")
	assert.EqualError(t, err, "no model selected")
}

func TestGenerateServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "missing").Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama API error: 404")
}

func TestSelectModel(t *testing.T) {
	models := []ModelInfo{
		{Name: "tinyllama:latest", Size: 600},
		{Name: "phi3:mini", Size: 2000},
		{Name: "mistral:7b", Size: 4000},
	}
	ts := fakeOllama(t, models)

	c := NewClient(ts.URL, "phi3:mini")
	got, err := c.SelectModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "phi3:mini", got, "installed configured model is kept")

	c = NewClient(ts.URL, "llama2")
	got, err = c.SelectModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mistral:7b", got)
	assert.Equal(t, "mistral:7b", c.Model())
}

func TestPickModelFallsBackToLargest(t *testing.T) {
	got := pickModel([]ModelInfo{{Name: "a", Size: 1}, {Name: "b", Size: 3}, {Name: "c", Size: 2}})
	assert.Equal(t, "b", got)
}

func TestSelectModelNoneInstalled(t *testing.T) {
	ts := fakeOllama(t, nil)
	_, err := NewClient(ts.URL, "").SelectModel(context.Background())
	assert.EqualError(t, err, "no models available")
}
