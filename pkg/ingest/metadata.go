package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/retry"
	"readily-hq/auditor/pkg/telemetry/metrics"
)

// Metadata is the model-extracted title and summary for one document.
type Metadata struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Fixed fallback summaries. The title always falls back to the filename.
const (
	summaryExtractionFailed = "Metadata extraction failed."
	summaryRateLimited      = "Rate limit exceeded."
	summaryEmptyList        = "Empty metadata list returned."
)

// metadataRetry bounds backoff on rate-limited metadata calls:
// 5 attempts with delays of 2s, 4s, 8s, 16s between them.
var metadataRetry = retry.Policy{
	MaxAttempts: 5,
	BaseDelay:   2 * time.Second,
	Retryable:   genai.IsRateLimited,
}

const metadataPromptFormat = `Analyze the following text (first few pages of a policy document).
Extract the official POLICY TITLE and a 1-sentence SUMMARY.

Filename: %s
Text: %s

Return strictly JSON: {"title": "...", "summary": "..."}`

// extractMetadata asks the fast model for a title and summary, bounded to
// the first maxChars of text. It never fails: every error path degrades to
// the filename plus a fixed placeholder summary.
func extractMetadata(ctx context.Context, gen genai.Generator, model string, text, filename string, maxChars int, mc *metrics.Collector) Metadata {
	prompt := fmt.Sprintf(metadataPromptFormat, filename, truncate(text, maxChars))

	var meta Metadata
	err := metadataRetry.Do(ctx, func(ctx context.Context) error {
		out, err := gen.GenerateContent(ctx, &genai.GenerateRequest{
			Model:  model,
			Prompt: prompt,
		})
		if err != nil {
			if genai.IsRateLimited(err) {
				mc.RecordModelRequest("metadata", "rate_limited")
				mc.RecordRateLimitRetry()
			} else {
				mc.RecordModelRequest("metadata", "error")
			}
			return err
		}
		mc.RecordModelRequest("metadata", "success")
		return genai.DecodeObject([]byte(out), &meta)
	})

	switch {
	case err == nil:
		if meta.Title == "" {
			meta.Title = filename
		}
		return meta
	case genai.IsRateLimited(err):
		return Metadata{Title: filename, Summary: summaryRateLimited}
	default:
		var empty *genai.EmptyResultError
		if errors.As(err, &empty) {
			return Metadata{Title: filename, Summary: summaryEmptyList}
		}
		return Metadata{Title: filename, Summary: summaryExtractionFailed}
	}
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
