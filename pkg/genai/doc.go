// Package genai implements the client for the hosted generative model API.
//
// The service exposes two completion modes that the auditor relies on:
//
//   - Fast structured completions: cheap JSON-mode calls used for metadata
//     extraction, question routing, and questionnaire parsing.
//   - Reasoning completions: high-effort calls with an elevated thinking
//     level, used for the final compliance verdict.
//
// The client is an explicitly constructed value passed to its consumers;
// there is no package-level client state. Errors are classified into typed
// variants so that callers can key retry decisions off *RateLimitError
// rather than message text.
package genai
