package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies environment variable
// overrides, and validates the result. A missing file is not an error: the
// service runs on defaults plus environment overrides, matching a
// container deployment with no mounted config.
//
// Environment variables follow the naming convention AUDITOR_SECTION_FIELD
// (e.g. AUDITOR_STORE_PATH) and always win over file settings.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("AUDITOR_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	// PORT keeps compatibility with platform-injected port assignment
	if val := os.Getenv("PORT"); val != "" {
		if _, err := strconv.Atoi(val); err == nil {
			host, _, splitErr := net.SplitHostPort(cfg.Server.ListenAddress)
			if splitErr != nil {
				host = "0.0.0.0"
			}
			cfg.Server.ListenAddress = net.JoinHostPort(host, val)
		}
	}
	if val := os.Getenv("AUDITOR_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Store overrides
	if val := os.Getenv("AUDITOR_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}
	if val := os.Getenv("AUDITOR_STORE_OPTIMIZE_SCHEDULE"); val != "" {
		cfg.Store.OptimizeSchedule = val
	}

	// Ingest overrides
	if val := os.Getenv("AUDITOR_INGEST_POLICIES_DIR"); val != "" {
		cfg.Ingest.PoliciesDir = val
	}
	if val := os.Getenv("AUDITOR_INGEST_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Ingest.Concurrency = i
		}
	}
	if val := os.Getenv("AUDITOR_INGEST_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ingest.Watch = b
		}
	}

	// Model API overrides. GEMINI_API_KEY is the conventional variable
	// name for the hosted service; the AUDITOR_ form wins when both are
	// set.
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		cfg.GenAI.APIKey = val
	}
	if val := os.Getenv("AUDITOR_GENAI_API_KEY"); val != "" {
		cfg.GenAI.APIKey = val
	}
	if val := os.Getenv("AUDITOR_GENAI_BASE_URL"); val != "" {
		cfg.GenAI.BaseURL = val
	}
	if val := os.Getenv("AUDITOR_GENAI_FAST_MODEL"); val != "" {
		cfg.GenAI.FastModel = val
	}
	if val := os.Getenv("AUDITOR_GENAI_REASONING_MODEL"); val != "" {
		cfg.GenAI.ReasoningModel = val
	}

	// Audit overrides
	if val := os.Getenv("AUDITOR_AUDIT_BATCH_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.BatchConcurrency = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("AUDITOR_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("AUDITOR_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
