package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/retry"
	"readily-hq/auditor/pkg/store"
)

const evalPromptFormat = `You are a STRICT healthcare compliance auditor.

REQUIREMENT: "%s"
SECTION: %s

CONTEXT:
%s

TASK:
Determine if the Requirement is MET (YES), NOT MET (NO), or UNCERTAIN.

GUIDELINES:
1. **Decisiveness**:
   - YES: Found explicit evidence.
   - NO: Silent or contradictory.
   - UNCERTAIN: Missing referenced appendix only.

2. **Evidence**:
   - **YES**: Provide VERBATIM quotes.
   - **NO**: Provide a "Gap Statement" explaining what is missing.

OUTPUT JSON:
{
    "met": "YES" | "NO" | "UNCERTAIN",
    "evidence": {
        "sources": [
            {
                "doc": "Policy Title / Filename",
                "page": "Page #",
                "total_pages": "Total Pages from header",
                "doc_title": "Just the Title (no filename)"
            }
        ],
        "excerpt": "Verbatim Quote (YES) or Gap Statement (NO)",
        "reason": "Detailed explanation."
    }
}
- If UNCERTAIN: Explain in 'reason'.`

// Fallback reasons for evaluation failures. These are part of the wire
// contract: clients key dashboard states off the exact strings.
const (
	reasonEmptyList   = "LLM returned empty list"
	reasonRateLimited = "Rate limit exceeded. Try batch evaluation with fewer items."
)

var evalRetry = retry.Policy{
	MaxAttempts: 4,
	BaseDelay:   5 * time.Second,
	Retryable:   genai.IsRateLimited,
}

// buildContext renders the retrieved documents into the prompt context.
// Only the leading documents are included to bound prompt size.
func (s *Service) buildContext(docs []store.PolicyDocument) string {
	limit := s.config.ContextDocuments
	if limit > len(docs) {
		limit = len(docs)
	}
	var b strings.Builder
	for _, d := range docs[:limit] {
		fmt.Fprintf(&b, "\n\n=== POLICY: %s - %s (File: %s, Total Pages: %d) ===\n%s",
			d.PolicyNumber, d.Title, d.FileID, d.TotalPages, d.FullText)
	}
	return b.String()
}

// evaluate renders the verdict for one question against the retrieved
// documents with the reasoning model. It never returns an error: every
// failure mode maps onto an "uncertain" result carrying a reason.
func (s *Service) evaluate(ctx context.Context, req EvaluationRequest, docs []store.PolicyDocument) EvaluationResult {
	prompt := fmt.Sprintf(evalPromptFormat, req.Question, req.Section, s.buildContext(docs))

	var result EvaluationResult
	err := evalRetry.Do(ctx, func(ctx context.Context) error {
		raw, err := s.gen.GenerateContent(ctx, &genai.GenerateRequest{
			Model:         s.config.ReasoningModel,
			Prompt:        prompt,
			ThinkingLevel: genai.ThinkingLevelHigh,
		})
		if err != nil {
			if genai.IsRateLimited(err) {
				s.metrics.RecordRateLimitRetry()
			}
			s.metrics.RecordModelRequest("evaluation", "error")
			return err
		}
		s.metrics.RecordModelRequest("evaluation", "success")
		return genai.DecodeObject([]byte(raw), &result)
	})

	var empty *genai.EmptyResultError
	switch {
	case err == nil:
		result.Question = req.Question
		return result
	case errors.As(err, &empty):
		return fallbackResult(req.Question, reasonEmptyList)
	case genai.IsRateLimited(err):
		s.logger.Error("evaluation failed after retries", "error", err)
		return fallbackResult(req.Question, reasonRateLimited)
	default:
		s.logger.Error("evaluation error", "error", err)
		return fallbackResult(req.Question, fmt.Sprintf("LLM Error: %v", err))
	}
}

func fallbackResult(question, reason string) EvaluationResult {
	return EvaluationResult{
		Question: question,
		Met:      metFallback,
		Evidence: Evidence{Reason: reason},
	}
}
