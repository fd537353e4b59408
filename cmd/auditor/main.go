// Auditor is a retrieval-augmented compliance auditing service.
//
// It indexes a directory of policy PDFs into a local full-text index,
// then answers audit questions by routing each question to search
// terms, retrieving matching policies, and judging compliance with a
// reasoning model.
//
// Usage:
//
//	# Start the server (ingests the policies directory on startup)
//	auditor run
//
//	# Start with a custom configuration file
//	auditor run --config /path/to/config.yaml
//
//	# Ingest the policies directory without starting the server
//	auditor ingest
//
//	# Show version information
//	auditor version
package main

func main() {
	Execute()
}
