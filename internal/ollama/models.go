package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// ModelInfo represents information about an Ollama model
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

// ListModelsResponse represents the response from listing models
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// preferred models for document question answering, best first
var preferredModels = []string{
	"llama3.2",
	"llama3.1",
	"qwen2.5",
	"mistral",
	"llama3",
	"gemma",
}

// ListModels lists the models installed on the server
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(body))
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Models, nil
}

// SelectModel keeps the configured model if it is installed, otherwise picks
// the first preferred model, otherwise the largest one. The choice is stored
// on the client.
func (c *Client) SelectModel(ctx context.Context) (string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", errors.New("no models available")
	}

	if c.model != "" {
		for _, m := range models {
			if m.Name == c.model {
				return c.model, nil
			}
		}
		c.log.Warnf("model %q is not installed, selecting another", c.model)
	}

	c.model = pickModel(models)
	return c.model, nil
}

func pickModel(models []ModelInfo) string {
	for _, preferred := range preferredModels {
		for _, m := range models {
			if strings.Contains(strings.ToLower(m.Name), preferred) {
				return m.Name
			}
		}
	}

	sorted := append([]ModelInfo(nil), models...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Size > sorted[j].Size
	})
	return sorted[0].Name
}
