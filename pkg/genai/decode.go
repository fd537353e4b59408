package genai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The model is asked for a JSON object but occasionally returns the object
// wrapped in a single-element array, or an empty array. DecodeObject
// normalizes all three shapes into one typed decode step.

// EmptyResultError indicates the model returned an empty JSON array where
// an object was expected.
type EmptyResultError struct{}

// Error implements the error interface.
func (e *EmptyResultError) Error() string {
	return "model returned an empty result list"
}

// DecodeError indicates the model output could not be decoded into the
// expected shape.
type DecodeError struct {
	// Raw is the model output that failed to decode
	Raw string

	// Cause is the underlying decode error
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode model output: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// DecodeObject decodes model output into v, unwrapping a single-element
// array if the model returned one. An empty array yields *EmptyResultError;
// any other malformed output yields *DecodeError.
func DecodeObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return &DecodeError{Raw: string(data), Cause: err}
		}
		if len(elements) == 0 {
			return &EmptyResultError{}
		}
		trimmed = elements[0]
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return &DecodeError{Raw: string(data), Cause: err}
	}
	return nil
}

// DecodeStringList decodes model output expected to be a JSON array of
// strings (the router's search terms).
func DecodeStringList(data []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(bytes.TrimSpace(data), &list); err != nil {
		return nil, &DecodeError{Raw: string(data), Cause: err}
	}
	return list, nil
}
