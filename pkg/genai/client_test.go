package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func candidateResponse(text string) string {
	body := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestNewClient(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient(Config{})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("NewClient() error = %v, want *ConfigError", err)
		}
		if cfgErr.Field != "api_key" {
			t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, "api_key")
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "k"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		defer client.Close()

		if client.FastModel() != DefaultFastModel {
			t.Errorf("FastModel() = %q, want %q", client.FastModel(), DefaultFastModel)
		}
		if client.ReasoningModel() != DefaultReasoningModel {
			t.Errorf("ReasoningModel() = %q, want %q", client.ReasoningModel(), DefaultReasoningModel)
		}
	})
}

func TestGenerateContent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotPath, gotKey string
		var gotBody generateContentRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-goog-api-key")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(candidateResponse(`{"ok": true}`)))
		})

		text, err := client.GenerateContent(context.Background(), &GenerateRequest{
			Model:  "gemini-2.0-flash",
			Prompt: "hello",
		})
		if err != nil {
			t.Fatalf("GenerateContent() error = %v", err)
		}
		if text != `{"ok": true}` {
			t.Errorf("text = %q", text)
		}
		if want := "/v1beta/models/gemini-2.0-flash:generateContent"; gotPath != want {
			t.Errorf("path = %q, want %q", gotPath, want)
		}
		if gotKey != "test-key" {
			t.Errorf("x-goog-api-key = %q, want %q", gotKey, "test-key")
		}
		if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Errorf("generationConfig = %+v, want responseMimeType application/json", gotBody.GenerationConfig)
		}
		if gotBody.GenerationConfig.ThinkingConfig != nil {
			t.Error("thinkingConfig set without ThinkingLevel in request")
		}
	})

	t.Run("thinking level forwarded", func(t *testing.T) {
		var gotBody generateContentRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(candidateResponse("{}")))
		})

		_, err := client.GenerateContent(context.Background(), &GenerateRequest{
			Model:         "gemini-3-flash-preview",
			Prompt:        "judge this",
			ThinkingLevel: ThinkingLevelHigh,
		})
		if err != nil {
			t.Fatalf("GenerateContent() error = %v", err)
		}
		tc := gotBody.GenerationConfig.ThinkingConfig
		if tc == nil || tc.ThinkingLevel != "high" {
			t.Errorf("thinkingConfig = %+v, want level high", tc)
		}
	})

	t.Run("http 429 is rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}`))
		})

		_, err := client.GenerateContent(context.Background(), &GenerateRequest{Prompt: "p"})
		if !IsRateLimited(err) {
			t.Fatalf("IsRateLimited(%v) = false, want true", err)
		}
		var rl *RateLimitError
		if !errors.As(err, &rl) {
			t.Fatalf("error = %v, want *RateLimitError", err)
		}
		if rl.RetryAfter != 7*time.Second {
			t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
		}
	})

	t.Run("resource exhausted without 429 is rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error": {"status": "RESOURCE_EXHAUSTED", "message": "exhausted"}}`))
		})

		_, err := client.GenerateContent(context.Background(), &GenerateRequest{Prompt: "p"})
		if !IsRateLimited(err) {
			t.Fatalf("IsRateLimited(%v) = false, want true", err)
		}
	})

	t.Run("api error is not rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "bad prompt", "status": "INVALID_ARGUMENT"}}`))
		})

		_, err := client.GenerateContent(context.Background(), &GenerateRequest{Prompt: "p"})
		if IsRateLimited(err) {
			t.Fatal("IsRateLimited() = true for a 400")
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusBadRequest {
			t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
		}
		if !strings.Contains(apiErr.Message, "bad prompt") {
			t.Errorf("Message = %q, want to contain %q", apiErr.Message, "bad prompt")
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		})

		_, err := client.GenerateContent(context.Background(), &GenerateRequest{Prompt: "p"})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})

	t.Run("empty prompt rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not reach the server")
		})

		_, err := client.GenerateContent(context.Background(), &GenerateRequest{})
		if err == nil {
			t.Fatal("GenerateContent() error = nil, want error")
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.header); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
