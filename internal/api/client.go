package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Generic messages shown when the transport, not the server, failed.
const (
	MsgNetworkError = "Network error"
	MsgUploadFailed = "Upload failed"
	MsgEmptyFile    = "File is empty"
)

// DefaultBaseURL is used when NewClient gets an empty base URL
const DefaultBaseURL = "http://localhost:5000"

// Client wraps the PDF chat HTTP API. Every method resolves to a Result;
// transport errors are never returned to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the log entry used for request tracing
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) {
		if entry != nil {
			c.log = entry
		}
	}
}

// NewClient creates a new API client bound to baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// no timeout: a hung request keeps the caller busy until the context ends
		httpClient: &http.Client{},
		log:        logrus.WithField("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks the backend status
func (c *Client) Health(ctx context.Context) Result[HealthStatus] {
	return do[HealthStatus](ctx, c, http.MethodGet, "/health", nil, "", MsgNetworkError)
}

// UploadDocument uploads a PDF as multipart field "file"
func (c *Client) UploadDocument(ctx context.Context, filename string, data []byte) Result[UploadResponse] {
	if len(data) == 0 {
		return Result[UploadResponse]{Error: MsgEmptyFile, Kind: FailureValidation}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		return transportFailure[UploadResponse](MsgUploadFailed, fmt.Errorf("failed to build multipart body: %w", err))
	}

	return do[UploadResponse](ctx, c, http.MethodPost, "/upload", &buf, writer.FormDataContentType(), MsgUploadFailed)
}

// SendMessage asks a question about a document
func (c *Client) SendMessage(ctx context.Context, documentID, message string) Result[ChatResponse] {
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return transportFailure[ChatResponse](MsgNetworkError, fmt.Errorf("failed to marshal request: %w", err))
	}
	return do[ChatResponse](ctx, c, http.MethodPost, "/chat/"+url.PathEscape(documentID), bytes.NewReader(body), "application/json", MsgNetworkError)
}

// GetChatHistory fetches the server-side transcript of a document
func (c *Client) GetChatHistory(ctx context.Context, documentID string) Result[ChatHistory] {
	return do[ChatHistory](ctx, c, http.MethodGet, "/chat/"+url.PathEscape(documentID)+"/history", nil, "", MsgNetworkError)
}

// ListDocuments lists previously uploaded documents
func (c *Client) ListDocuments(ctx context.Context) Result[DocumentList] {
	return do[DocumentList](ctx, c, http.MethodGet, "/documents", nil, "", MsgNetworkError)
}

// DeleteDocument removes a document on the server
func (c *Client) DeleteDocument(ctx context.Context, documentID string) Result[DeleteResponse] {
	return do[DeleteResponse](ctx, c, http.MethodDelete, "/documents/"+url.PathEscape(documentID), nil, "", MsgNetworkError)
}

// do performs one request and normalizes the outcome into a Result
func do[T any](ctx context.Context, c *Client, method, path string, body io.Reader, contentType, genericMsg string) Result[T] {
	start := time.Now()
	res := roundTrip[T](ctx, c, method, path, body, contentType, genericMsg)

	entry := c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"outcome": res.Kind.String(),
		"elapsed": time.Since(start).String(),
	})
	switch res.Kind {
	case FailureNone:
		entry.Debug("api call succeeded")
	case FailureTransport:
		entry.WithError(res.Err).Warn("api call failed")
	default:
		entry.WithField("error", res.Error).Info("api call rejected")
	}
	return res
}

func roundTrip[T any](ctx context.Context, c *Client, method, path string, body io.Reader, contentType, genericMsg string) Result[T] {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return transportFailure[T](genericMsg, fmt.Errorf("failed to create request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportFailure[T](genericMsg, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	// the envelope is decoded whatever the status code; servers report
	// application errors as {success:false,error:...} with 4xx/5xx
	var envelope Result[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return transportFailure[T](genericMsg, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err))
	}

	if !envelope.Success {
		envelope.Data = nil
		envelope.Kind = FailureApplication
		envelope.Err = fmt.Errorf("server rejected request (status %d): %s", resp.StatusCode, envelope.Error)
		return envelope
	}
	if envelope.Data == nil {
		return transportFailure[T](genericMsg, errors.New("response envelope has no data"))
	}

	envelope.Error = ""
	envelope.Kind = FailureNone
	return envelope
}

func transportFailure[T any](msg string, err error) Result[T] {
	return Result[T]{Error: msg, Kind: FailureTransport, Err: err}
}
