package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"readily-hq/auditor/pkg/config"
	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/ingest"
	"readily-hq/auditor/pkg/store"
)

var ingestFlags struct {
	policiesDir string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest the policies directory without starting the server",
	Long: `Scan the policies directory, extract text and metadata from every
PDF, and index the documents for full-text search.

Ingestion is idempotent: a populated index is left untouched. Delete
the database file to force a rebuild.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFlags.policiesDir, "policies-dir", "", "override policies directory")
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if ingestFlags.policiesDir != "" {
		cfg.Ingest.PoliciesDir = ingestFlags.policiesDir
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	setupLogging(cfg.Telemetry.Logging)

	st, err := store.Open(&store.Config{
		Path:        cfg.Store.Path,
		BusyTimeout: cfg.Store.BusyTimeout,
		WALMode:     cfg.Store.WALMode,
	})
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer st.Close()

	gen, err := genai.NewClient(genai.Config{
		APIKey:         cfg.GenAI.APIKey,
		BaseURL:        cfg.GenAI.BaseURL,
		FastModel:      cfg.GenAI.FastModel,
		ReasoningModel: cfg.GenAI.ReasoningModel,
		Timeout:        cfg.GenAI.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer gen.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := ingest.New(ingest.Config{
		PoliciesDir:      cfg.Ingest.PoliciesDir,
		Concurrency:      cfg.Ingest.Concurrency,
		QueueSize:        cfg.Ingest.QueueSize,
		MetadataMaxChars: cfg.Ingest.MetadataMaxChars,
		FastModel:        cfg.GenAI.FastModel,
	}, st, gen, ingest.NewPDFExtractor(), nil)

	if err := pipeline.Run(ctx); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	count, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting indexed documents: %w", err)
	}
	fmt.Printf("✓ Ingestion complete (%d documents indexed)\n", count)
	return nil
}
