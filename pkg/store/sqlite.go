package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config contains configuration for the document store.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// WALMode enables Write-Ahead Logging so readers are never blocked
	// by the ingestion writer. Default: true
	WALMode bool
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "audit.db",
		BusyTimeout: 5 * time.Second,
		WALMode:     true,
	}
}

// Store is the SQLite-backed policy document store.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens (creating if needed) the document store at the configured
// path and ensures the FTS schema exists.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %q: %w", config.Path, err)
	}

	s := &Store{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "store"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("document store opened",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas and creates the schema.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	busyTimeout := s.config.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, countDocuments).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Insert adds one document to the index. The ingestion pipeline is the
// only caller, and it serializes all Inserts through its writer goroutine.
func (s *Store) Insert(ctx context.Context, doc *PolicyDocument) error {
	_, err := s.db.ExecContext(ctx, insertDocument,
		doc.FileID,
		doc.PolicyNumber,
		doc.Title,
		doc.Summary,
		doc.TotalPages,
		doc.FullText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %q: %w", doc.FileID, err)
	}
	return nil
}

// Search matches term against the indexed columns and returns up to limit
// documents ordered by the FTS rank. The term must already be sanitized;
// FTS treats punctuation as query syntax.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]PolicyDocument, error) {
	rows, err := s.db.QueryContext(ctx, searchDocuments, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search for %q failed: %w", term, err)
	}
	defer rows.Close()

	var docs []PolicyDocument
	for rows.Next() {
		var doc PolicyDocument
		if err := rows.Scan(
			&doc.FileID,
			&doc.PolicyNumber,
			&doc.Title,
			&doc.Summary,
			&doc.TotalPages,
			&doc.FullText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search for %q failed: %w", term, err)
	}

	return docs, nil
}

// Optimize merges the FTS index segments. Run periodically by the
// Maintainer; never required for correctness.
func (s *Store) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, optimizeIndex); err != nil {
		return fmt.Errorf("failed to optimize index: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	s.logger.Info("document store closed")
	return nil
}
