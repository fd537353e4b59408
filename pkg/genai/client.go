package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Config contains configuration for the model API client.
type Config struct {
	// APIKey authenticates requests to the model API
	APIKey string

	// BaseURL is the API endpoint base (default: the hosted service)
	BaseURL string

	// FastModel is the model used for routing, metadata extraction and
	// questionnaire parsing
	FastModel string

	// ReasoningModel is the model used for compliance verdicts
	ReasoningModel string

	// Timeout is the per-request timeout (0 means no timeout; retries and
	// backoff are governed by the caller's retry policy)
	Timeout time.Duration

	// MaxIdleConns is the connection pool size
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host connection pool size
	MaxIdleConnsPerHost int
}

const (
	// DefaultBaseURL is the hosted model API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultFastModel handles the cheap structured-JSON tasks.
	DefaultFastModel = "gemini-2.0-flash"

	// DefaultReasoningModel renders compliance verdicts with a high
	// thinking budget.
	DefaultReasoningModel = "gemini-3-flash-preview"
)

// Client is an HTTP client for the generateContent API with connection
// pooling. It is safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a new model API client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, &ConfigError{
			Field:   "api_key",
			Message: "API key is required",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.FastModel == "" {
		config.FastModel = DefaultFastModel
	}
	if config.ReasoningModel == "" {
		config.ReasoningModel = DefaultReasoningModel
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "genai"),
	}

	slog.Info("genai client initialized",
		"base_url", config.BaseURL,
		"fast_model", config.FastModel,
		"reasoning_model", config.ReasoningModel,
	)

	return c, nil
}

// FastModel returns the configured fast model identifier.
func (c *Client) FastModel() string { return c.config.FastModel }

// ReasoningModel returns the configured reasoning model identifier.
func (c *Client) ReasoningModel() string { return c.config.ReasoningModel }

// GenerateContent sends a generation request and returns the model's text
// output. All requests ask for application/json responses; callers decode
// the returned text with the helpers in decode.go.
func (c *Client) GenerateContent(ctx context.Context, req *GenerateRequest) (string, error) {
	if req == nil || req.Prompt == "" {
		return "", &ConfigError{Field: "prompt", Message: "prompt is required"}
	}
	model := req.Model
	if model == "" {
		model = c.config.FastModel
	}

	wireReq := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
		},
	}
	if req.ThinkingLevel != "" {
		wireReq.GenerationConfig.ThinkingConfig = &thinkingConfig{
			ThinkingLevel: req.ThinkingLevel,
		}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.config.BaseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request to model %q failed: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ParseError{
			Model: model,
			Cause: fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyError(model, resp, respBody)
	}

	var wireResp generateContentResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return "", &ParseError{
			Model:       model,
			RawResponse: string(respBody),
			Cause:       err,
		}
	}

	if len(wireResp.Candidates) == 0 || len(wireResp.Candidates[0].Content.Parts) == 0 {
		return "", &ParseError{
			Model:       model,
			RawResponse: string(respBody),
			Cause:       fmt.Errorf("response contains no candidates"),
		}
	}

	text := wireResp.Candidates[0].Content.Parts[0].Text

	c.logger.Debug("generation succeeded",
		"model", model,
		"thinking_level", req.ThinkingLevel,
		"latency_ms", time.Since(start).Milliseconds(),
		"response_chars", len(text),
	)

	return text, nil
}

// classifyError maps an error response to a typed error. HTTP 429 and
// RESOURCE_EXHAUSTED both classify as rate limiting; everything else is a
// permanent APIError the caller must not retry.
func (c *Client) classifyError(model string, resp *http.Response, body []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	message := apiErr.Error.Message
	if message == "" {
		message = string(body)
	}

	if resp.StatusCode == http.StatusTooManyRequests || apiErr.Error.Status == "RESOURCE_EXHAUSTED" {
		return &RateLimitError{
			Model:      model,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}
	}

	return &APIError{
		Model:      model,
		StatusCode: resp.StatusCode,
		Status:     apiErr.Error.Status,
		Message:    message,
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
