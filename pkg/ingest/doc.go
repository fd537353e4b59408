// Package ingest implements the startup ingestion pipeline.
//
// The pipeline scans the policies directory recursively for PDFs, extracts
// page-marked text and model-produced metadata from each file under a
// bounded worker pool, and hands finished documents to a single writer
// goroutine over a bounded channel. The writer is the exclusive owner of
// the store's insert path; SQLite is not safe for concurrent writers, and
// the producer/consumer split is what keeps the one-writer invariant
// instead of ad hoc locking.
//
// The channel is closed only after every producer has returned, so a file
// that is skipped (unreadable, or no extractable text) can never leave the
// writer waiting for an item that will not arrive.
package ingest
