// Package ollama is a small client for a local Ollama server, used by the
// mock backend to write answers instead of quoting excerpts.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is where Ollama listens out of the box
const DefaultBaseURL = "http://localhost:11434"

// Client wraps Ollama API interactions
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a client that generates with model. An empty model is
// resolved later with SelectModel.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // generation on CPU is slow
		},
		log: logrus.WithField("component", "ollama"),
	}
}

// Model returns the model used for generation
func (c *Client) Model() string {
	return c.model
}

// GenerateRequest represents a generation request
type GenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// GenerateResponse is one line of a generation response
type GenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count,omitempty"`
}

// Generate returns the model's full answer to prompt
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.model == "" {
		return "", errors.New("no model selected")
	}
	jsonData, err := json.Marshal(GenerateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(body))
	}

	// Ollama may still answer as a stream of JSON lines
	var result strings.Builder
	decoder := json.NewDecoder(resp.Body)
	tokens := 0
	for {
		var genResp GenerateResponse
		if err := decoder.Decode(&genResp); err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		result.WriteString(genResp.Response)
		tokens += genResp.EvalCount
		if genResp.Done {
			break
		}
	}

	c.log.WithFields(logrus.Fields{
		"model":   c.model,
		"tokens":  tokens,
		"elapsed": time.Since(start).String(),
	}).Debug("generation finished")
	return strings.TrimSpace(result.String()), nil
}
