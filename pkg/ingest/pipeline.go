package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/store"
	"readily-hq/auditor/pkg/telemetry/metrics"
)

// Config contains pipeline settings.
type Config struct {
	// PoliciesDir is the root directory scanned recursively for PDFs
	PoliciesDir string

	// Concurrency caps simultaneous file processing (default 20)
	Concurrency int

	// QueueSize bounds the hand-off channel to the writer (default 64)
	QueueSize int

	// MetadataMaxChars bounds model input for metadata extraction
	// (default 5000)
	MetadataMaxChars int

	// FastModel is the model used for metadata extraction
	FastModel string
}

// Pipeline populates the document store from a directory of policy PDFs.
type Pipeline struct {
	config    Config
	store     *store.Store
	gen       genai.Generator
	extractor Extractor
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// New creates an ingestion pipeline.
func New(config Config, st *store.Store, gen genai.Generator, extractor Extractor, mc *metrics.Collector) *Pipeline {
	if config.Concurrency <= 0 {
		config.Concurrency = 20
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if config.MetadataMaxChars <= 0 {
		config.MetadataMaxChars = 5000
	}
	if extractor == nil {
		extractor = NewPDFExtractor()
	}
	return &Pipeline{
		config:    config,
		store:     st,
		gen:       gen,
		extractor: extractor,
		metrics:   mc,
		logger:    slog.Default().With("component", "ingest"),
	}
}

// Run ingests every PDF under the policies directory. It is a no-op when
// the store already holds at least one document, so restarts never
// re-process the corpus. Per-file failures are logged and skipped; Run
// returns an error only when the store itself is unusable.
func (p *Pipeline) Run(ctx context.Context) error {
	count, err := p.store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		p.logger.Info("store already populated, skipping ingestion", "documents", count)
		return nil
	}

	files, err := p.discover()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		p.logger.Info("no PDFs found", "dir", p.config.PoliciesDir)
		return nil
	}

	p.logger.Info("starting ingestion",
		"files", len(files),
		"dir", p.config.PoliciesDir,
		"concurrency", p.config.Concurrency,
	)
	start := time.Now()

	results := make(chan *store.PolicyDocument, p.config.QueueSize)

	// Single writer goroutine: the exclusive owner of the insert path.
	writerDone := make(chan int)
	go func() {
		written := 0
		for doc := range results {
			if err := p.store.Insert(ctx, doc); err != nil {
				p.logger.Error("failed to write document", "file_id", doc.FileID, "error", err)
				continue
			}
			written++
			p.metrics.RecordDocumentIndexed()
			if written%10 == 0 {
				p.logger.Info("ingestion progress", "written", written, "discovered", len(files))
			}
		}
		writerDone <- written
	}()

	// Bounded worker pool. The channel is closed strictly after every
	// producer returns, so skipped files cannot stall the writer.
	sem := make(chan struct{}, p.config.Concurrency)
	var wg sync.WaitGroup
	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			p.processFile(ctx, path, results)
		}(path)
	}
	wg.Wait()
	close(results)

	written := <-writerDone
	p.metrics.RecordIngestDuration(time.Since(start))
	p.logger.Info("ingestion complete",
		"written", written,
		"skipped", len(files)-written,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// discover walks the policies directory collecting PDF paths.
func (p *Pipeline) discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(p.config.PoliciesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// processFile extracts one PDF and emits at most one document. Every
// failure path logs, records a skip, and returns without emitting.
func (p *Pipeline) processFile(ctx context.Context, path string, results chan<- *store.PolicyDocument) {
	filename := filepath.Base(path)

	text, pages, err := p.extractor.Extract(path)
	if err != nil {
		p.logger.Warn("failed to read PDF, skipping", "file", filename, "error", err)
		p.metrics.RecordDocumentSkipped("read_error")
		return
	}

	if strings.TrimSpace(text) == "" {
		// No OCR fallback: scanned-image PDFs are excluded entirely.
		p.logger.Warn("no text extracted, skipping (scanned image?)", "file", filename)
		p.metrics.RecordDocumentSkipped("no_text")
		return
	}

	meta := extractMetadata(ctx, p.gen, p.config.FastModel, text, filename, p.config.MetadataMaxChars, p.metrics)

	doc := &store.PolicyDocument{
		FileID:       filename,
		PolicyNumber: policyNumber(filename),
		Title:        meta.Title,
		Summary:      meta.Summary,
		TotalPages:   pages,
		FullText:     text,
	}

	select {
	case results <- doc:
		p.logger.Info("processed document", "file", filename, "title", meta.Title, "pages", pages)
	case <-ctx.Done():
	}
}

// policyNumber derives the policy identifier from the filename, e.g.
// "GA.7110" from "GA.7110 Street Medicine.pdf". Best-effort: filenames
// without a leading identifier yield whatever precedes the first space.
func policyNumber(filename string) string {
	head, _, _ := strings.Cut(filename, " ")
	return strings.TrimSpace(head)
}
