// Package audit implements the question evaluation pipeline:
// routing a question to search terms, retrieving candidate policy
// documents from the full-text index, and rendering a structured
// compliance verdict with the reasoning model.
//
// Every failure inside the pipeline degrades to data: callers always
// receive an EvaluationResult, with an "uncertain" verdict and an
// explanatory reason when something went wrong. The only hard guard is
// the empty-retrieval short-circuit, which refuses to invoke the
// reasoning model without context.
package audit
