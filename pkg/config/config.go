// Package config defines the service configuration and its YAML loading.
package config

import "time"

// Config is the root configuration for the auditing service.
type Config struct {
	// Server contains HTTP server settings
	Server ServerConfig `yaml:"server"`

	// Store contains document store settings
	Store StoreConfig `yaml:"store"`

	// Ingest contains ingestion pipeline settings
	Ingest IngestConfig `yaml:"ingest"`

	// GenAI contains model API client settings
	GenAI GenAIConfig `yaml:"genai"`

	// Audit contains query pipeline settings
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging and metrics settings
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port the server binds to
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Evaluation requests block on reasoning calls with backoff, so this
	// must comfortably exceed the retry schedule.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxUploadBytes limits questionnaire upload size
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// StoreConfig contains document store settings.
type StoreConfig struct {
	// Path is the SQLite database file path
	Path string `yaml:"path"`

	// BusyTimeout is the wait when the database is locked
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables Write-Ahead Logging
	WALMode bool `yaml:"wal_mode"`

	// OptimizeSchedule is a cron expression for FTS index optimization;
	// empty disables the maintainer
	OptimizeSchedule string `yaml:"optimize_schedule"`
}

// IngestConfig contains ingestion pipeline settings.
type IngestConfig struct {
	// PoliciesDir is the root directory scanned recursively for PDFs
	PoliciesDir string `yaml:"policies_dir"`

	// Concurrency caps simultaneous PDF processing
	Concurrency int `yaml:"concurrency"`

	// QueueSize bounds the hand-off channel to the writer
	QueueSize int `yaml:"queue_size"`

	// MetadataMaxChars bounds the text sent for metadata extraction
	MetadataMaxChars int `yaml:"metadata_max_chars"`

	// Watch enables reporting of PDFs that arrive after ingestion
	Watch bool `yaml:"watch"`
}

// GenAIConfig contains model API client settings.
type GenAIConfig struct {
	// APIKey authenticates against the model API
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint (for testing)
	BaseURL string `yaml:"base_url"`

	// FastModel is used for routing, metadata and questionnaire parsing
	FastModel string `yaml:"fast_model"`

	// ReasoningModel is used for compliance verdicts
	ReasoningModel string `yaml:"reasoning_model"`

	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout"`
}

// AuditConfig contains query pipeline settings.
type AuditConfig struct {
	// SearchLimit is the per-term retrieval cap
	SearchLimit int `yaml:"search_limit"`

	// ContextDocuments caps the documents assembled into the reasoning
	// context
	ContextDocuments int `yaml:"context_documents"`

	// BatchConcurrency caps simultaneous evaluations in a batch
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string `yaml:"level"`

	// Format is the output format ("json", "text")
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled exposes /metrics when true
	Enabled bool `yaml:"enabled"`
}
