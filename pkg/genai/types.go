package genai

import "context"

// ThinkingLevelHigh requests the deepest reasoning effort the model
// supports. Used for compliance verdicts only; routing and metadata
// extraction run without a thinking budget.
const ThinkingLevelHigh = "high"

// GenerateRequest is a single content generation request.
// All requests made by the auditor ask for strict JSON output.
type GenerateRequest struct {
	// Model is the model identifier (e.g. "gemini-2.0-flash")
	Model string

	// Prompt is the full prompt text
	Prompt string

	// ThinkingLevel, when non-empty, enables the model's reasoning mode
	// at the given effort level
	ThinkingLevel string
}

// Generator is the interface consumed by the ingestion and audit
// pipelines. *Client implements it; tests substitute fakes.
type Generator interface {
	// GenerateContent returns the model's text output for the request.
	GenerateContent(ctx context.Context, req *GenerateRequest) (string, error)
}

// wire types for the generateContent endpoint

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingLevel string `json:"thinkingLevel"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
