package audit

import (
	"context"
	"fmt"

	"readily-hq/auditor/pkg/genai"
)

const routerPromptFormat = `Based on this audit question, what are the specific 3 search terms I should use to find the relevant policy document?
Focus on specific policy NAMES (e.g. "Hospice", "Claims Payment", "Grievances") and UNIQUE IDS if implied.

Question: %s

Return strictly JSON: ["Term 1", "Term 2", "Term 3"]`

// routeTerms asks the fast model for search terms matching the question.
// Routing never fails the pipeline: any error falls back to using the
// raw question as the single search term.
func (s *Service) routeTerms(ctx context.Context, question string) []string {
	raw, err := s.gen.GenerateContent(ctx, &genai.GenerateRequest{
		Model:  s.config.FastModel,
		Prompt: fmt.Sprintf(routerPromptFormat, question),
	})
	if err != nil {
		s.metrics.RecordModelRequest("routing", "error")
		s.logger.Warn("router error, falling back to raw question",
			"error", err)
		return []string{question}
	}
	s.metrics.RecordModelRequest("routing", "success")

	terms, err := genai.DecodeStringList([]byte(raw))
	if err != nil || len(terms) == 0 {
		s.logger.Warn("router returned undecodable terms, falling back to raw question",
			"error", err)
		return []string{question}
	}
	s.logger.Debug("router terms", "terms", terms)
	return terms
}
