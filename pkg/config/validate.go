package config

import "fmt"

// Validate checks the configuration for values the service cannot run
// with. The API key is deliberately not validated here: the ingest and
// version commands work without one, and the client constructor rejects a
// missing key where it matters.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if cfg.Ingest.PoliciesDir == "" {
		return fmt.Errorf("ingest.policies_dir must not be empty")
	}
	if cfg.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest.concurrency must be at least 1, got %d", cfg.Ingest.Concurrency)
	}
	if cfg.Ingest.QueueSize < 1 {
		return fmt.Errorf("ingest.queue_size must be at least 1, got %d", cfg.Ingest.QueueSize)
	}
	if cfg.Ingest.MetadataMaxChars < 1 {
		return fmt.Errorf("ingest.metadata_max_chars must be at least 1, got %d", cfg.Ingest.MetadataMaxChars)
	}
	if cfg.Audit.SearchLimit < 1 {
		return fmt.Errorf("audit.search_limit must be at least 1, got %d", cfg.Audit.SearchLimit)
	}
	if cfg.Audit.ContextDocuments < 1 {
		return fmt.Errorf("audit.context_documents must be at least 1, got %d", cfg.Audit.ContextDocuments)
	}
	if cfg.Audit.BatchConcurrency < 1 {
		return fmt.Errorf("audit.batch_concurrency must be at least 1, got %d", cfg.Audit.BatchConcurrency)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q",
			cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be json or text; got %q",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
