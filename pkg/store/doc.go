// Package store implements the full-text-searchable policy document store.
//
// The store is a single SQLite file holding one FTS5 virtual table with a
// porter-stemming tokenizer. Documents are written once during ingestion
// and never updated or deleted; the only write path is Insert, and the
// ingestion pipeline funnels every Insert through a single goroutine
// because SQLite is not safe for concurrent writers. Reads (Count, Search)
// may run from any goroutine.
package store
