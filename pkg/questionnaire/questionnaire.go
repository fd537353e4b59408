// Package questionnaire extracts audit questions from uploaded
// questionnaire PDFs using the fast model.
package questionnaire

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"readily-hq/auditor/pkg/audit"
	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/ingest"
	"readily-hq/auditor/pkg/telemetry/metrics"
)

const extractPromptFormat = `Extract all audit requirements/questions from the text below.
Return strictly a JSON array of objects: [{"section": "...", "question": "..."}]

RULES:
- Exclude headers like "Review Findings", "Criteria", "Metric" from the question text.
- Text should be the actual requirement question only.

TEXT:
%s`

// Extractor turns a questionnaire PDF into structured questions.
type Extractor struct {
	gen       genai.Generator
	pdf       ingest.Extractor
	fastModel string
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewExtractor creates a questionnaire extractor.
func NewExtractor(gen genai.Generator, pdf ingest.Extractor, fastModel string, mc *metrics.Collector, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		gen:       gen,
		pdf:       pdf,
		fastModel: fastModel,
		metrics:   mc,
		logger:    logger.With("component", "questionnaire"),
	}
}

// ExtractFromFile reads the PDF at path and extracts its questions.
// Unlike the evaluation pipeline, extraction errors propagate: the
// caller uploaded the file and needs to know it failed.
func (e *Extractor) ExtractFromFile(ctx context.Context, path string) ([]audit.EvaluationRequest, error) {
	text, _, err := e.pdf.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("reading questionnaire: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("questionnaire %s contains no extractable text", path)
	}
	return e.Extract(ctx, text)
}

// Extract asks the fast model for the questions contained in text.
func (e *Extractor) Extract(ctx context.Context, text string) ([]audit.EvaluationRequest, error) {
	raw, err := e.gen.GenerateContent(ctx, &genai.GenerateRequest{
		Model:  e.fastModel,
		Prompt: fmt.Sprintf(extractPromptFormat, text),
	})
	if err != nil {
		e.metrics.RecordModelRequest("questionnaire", "error")
		return nil, fmt.Errorf("extracting questions: %w", err)
	}
	e.metrics.RecordModelRequest("questionnaire", "success")

	var questions []audit.EvaluationRequest
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, &genai.DecodeError{Raw: raw, Cause: err}
	}
	e.logger.Info("extracted questions", "count", len(questions))
	return questions, nil
}
