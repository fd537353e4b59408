package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/store"
	"readily-hq/auditor/pkg/telemetry/metrics"
)

// Searcher is the slice of the document store the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]store.PolicyDocument, error)
}

// Config controls the evaluation pipeline.
type Config struct {
	// SearchLimit caps the hits returned per search term
	SearchLimit int

	// ContextDocuments caps how many retrieved documents are fed to the
	// reasoning model
	ContextDocuments int

	// BatchConcurrency bounds concurrent evaluations in a batch
	BatchConcurrency int

	// FastModel handles routing
	FastModel string

	// ReasoningModel handles verdicts
	ReasoningModel string
}

// Service evaluates compliance questions against the indexed policies.
type Service struct {
	config  Config
	store   Searcher
	gen     genai.Generator
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewService creates an evaluation service. A nil metrics collector
// disables instrumentation.
func NewService(cfg Config, searcher Searcher, gen genai.Generator, mc *metrics.Collector, logger *slog.Logger) *Service {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 2
	}
	if cfg.ContextDocuments <= 0 {
		cfg.ContextDocuments = 2
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config:  cfg,
		store:   searcher,
		gen:     gen,
		metrics: mc,
		logger:  logger.With("component", "audit"),
	}
}

// Evaluate answers a single compliance question: route to search terms,
// retrieve matching policies, then judge with the reasoning model. When
// retrieval comes back empty the reasoning model is never invoked and a
// placeholder result is returned instead.
func (s *Service) Evaluate(ctx context.Context, req EvaluationRequest) EvaluationResult {
	start := time.Now()
	logger := s.logger.With("evaluation_id", uuid.NewString())
	logger.Info("evaluating question", "section", req.Section)

	terms := s.routeTerms(ctx, req.Question)
	docs := s.retrieve(ctx, terms)

	if len(docs) == 0 {
		logger.Info("no policies matched", "terms", terms)
		result := noMatchResult(req.Question)
		s.metrics.RecordEvaluation(result.Met, time.Since(start))
		return result
	}

	result := s.evaluate(ctx, req, docs)
	s.metrics.RecordEvaluation(result.Met, time.Since(start))
	logger.Info("evaluation complete",
		"met", result.Met,
		"documents", len(docs),
		"duration", time.Since(start))
	return result
}

// EvaluateBatch evaluates questions concurrently, bounded by the
// configured batch concurrency. Results come back in request order.
func (s *Service) EvaluateBatch(ctx context.Context, reqs []EvaluationRequest) []EvaluationResult {
	results := make([]EvaluationResult, len(reqs))
	sem := make(chan struct{}, s.config.BatchConcurrency)

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req EvaluationRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.Evaluate(ctx, req)
		}(i, req)
	}
	wg.Wait()
	return results
}

// noMatchResult is the guard against hallucination: with nothing
// retrieved there is no context worth reasoning over.
func noMatchResult(question string) EvaluationResult {
	page := 0
	return EvaluationResult{
		Question: question,
		Met:      metFallback,
		Evidence: Evidence{
			Chunk:  "No relevant policy documents found.",
			Doc:    "N/A",
			Page:   &page,
			Reason: "No policies matched the search topics.",
		},
	}
}
