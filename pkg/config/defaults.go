package config

import "time"

// Default returns the configuration used when the file omits a field.
// Load unmarshals the YAML over this value, so file settings win and
// everything else keeps these defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   "0.0.0.0:8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxHeaderBytes:  1 << 20,
			MaxUploadBytes:  32 << 20,
		},
		Store: StoreConfig{
			Path:             "audit.db",
			BusyTimeout:      5 * time.Second,
			WALMode:          true,
			OptimizeSchedule: "0 3 * * *",
		},
		Ingest: IngestConfig{
			PoliciesDir:      "policies",
			Concurrency:      20,
			QueueSize:        64,
			MetadataMaxChars: 5000,
			Watch:            false,
		},
		GenAI: GenAIConfig{
			FastModel:      "gemini-2.0-flash",
			ReasoningModel: "gemini-3-flash-preview",
			Timeout:        2 * time.Minute,
		},
		Audit: AuditConfig{
			SearchLimit:      2,
			ContextDocuments: 2,
			BatchConcurrency: 10,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
	}
}
