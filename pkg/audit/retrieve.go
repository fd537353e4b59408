package audit

import (
	"context"
	"regexp"
	"strings"

	"readily-hq/auditor/pkg/store"
)

// FTS5 treats most punctuation as syntax, so terms are reduced to
// alphanumerics and spaces before matching.
var termSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// SanitizeTerm strips every character a raw model-produced term could
// contain that would be interpreted as full-text query syntax.
func SanitizeTerm(term string) string {
	return termSanitizer.ReplaceAllString(term, "")
}

// retrieve runs every search term against the index and merges the hits.
// Duplicates found by multiple terms collapse to a single entry keyed by
// file ID: the first hit fixes the position, the last hit supplies the
// row. Per-term search failures are logged and skipped so one bad term
// cannot sink the whole retrieval.
func (s *Service) retrieve(ctx context.Context, terms []string) []store.PolicyDocument {
	var (
		byID = make(map[string]int)
		docs []store.PolicyDocument
	)
	for _, term := range terms {
		safe := strings.TrimSpace(SanitizeTerm(term))
		if safe == "" {
			continue
		}
		hits, err := s.store.Search(ctx, safe, s.config.SearchLimit)
		if err != nil {
			s.logger.Warn("search error", "term", term, "error", err)
			continue
		}
		s.metrics.RecordSearch()
		for _, hit := range hits {
			if i, ok := byID[hit.FileID]; ok {
				docs[i] = hit
				continue
			}
			byID[hit.FileID] = len(docs)
			docs = append(docs, hit)
		}
	}
	return docs
}
