package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"readily-hq/auditor/pkg/audit"
	"readily-hq/auditor/pkg/config"
	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/ingest"
	"readily-hq/auditor/pkg/questionnaire"
	"readily-hq/auditor/pkg/server"
	"readily-hq/auditor/pkg/store"
	"readily-hq/auditor/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	skipIngest    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the audit server",
	Long: `Start the audit server with the specified configuration.

On startup the policies directory is ingested into the full-text index
unless it is already populated, then the HTTP API starts serving
evaluation requests.

Examples:
  # Start with default config
  auditor run

  # Start with custom config
  auditor run --config /etc/auditor/config.yaml

  # Override listen address
  auditor run --listen 0.0.0.0:8080

  # Skip the startup ingestion pass
  auditor run --skip-ingest`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.skipIngest, "skip-ingest", false, "skip the startup ingestion pass")
}

func runServer(cmd *cobra.Command, args []string) error {
	// A local .env is convenient in development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger := setupLogging(cfg.Telemetry.Logging)

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(prometheus.NewRegistry())
	}

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

	if !runFlags.skipIngest {
		pipeline := ingest.New(ingest.Config{
			PoliciesDir:      cfg.Ingest.PoliciesDir,
			Concurrency:      cfg.Ingest.Concurrency,
			QueueSize:        cfg.Ingest.QueueSize,
			MetadataMaxChars: cfg.Ingest.MetadataMaxChars,
			FastModel:        cfg.GenAI.FastModel,
		}, st, gen, ingest.NewPDFExtractor(), collector)
		if err := pipeline.Run(ctx); err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
	}

	// Nightly FTS index optimization. An empty schedule disables it.
	maintainer := store.NewMaintainer(st, cfg.Store.OptimizeSchedule)
	if err := maintainer.Start(); err != nil {
		logger.Warn("index maintenance disabled", "error", err)
	} else {
		defer maintainer.Stop()
	}

	if cfg.Ingest.Watch {
		watcher, err := ingest.NewWatcher(cfg.Ingest.PoliciesDir, collector)
		if err != nil {
			logger.Warn("directory watch disabled", "error", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	auditor := audit.NewService(audit.Config{
		SearchLimit:      cfg.Audit.SearchLimit,
		ContextDocuments: cfg.Audit.ContextDocuments,
		BatchConcurrency: cfg.Audit.BatchConcurrency,
		FastModel:        cfg.GenAI.FastModel,
		ReasoningModel:   cfg.GenAI.ReasoningModel,
	}, st, gen, collector, logger)

	extractor := questionnaire.NewExtractor(gen, ingest.NewPDFExtractor(), cfg.GenAI.FastModel, collector, logger)

	srv := server.New(server.Options{
		Config:        cfg.Server,
		Auditor:       auditor,
		Questionnaire: extractor,
		Counter:       st,
		Metrics:       collector,
		Logger:        logger,
		TemplateDir:   "templates",
	})

	return srv.Start(ctx)
}

// setupLogging configures the process-wide logger from config.
func setupLogging(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
