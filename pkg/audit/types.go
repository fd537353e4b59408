package audit

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Verdict values the reasoning model can return.
const (
	MetYes       = "YES"
	MetNo        = "NO"
	MetUncertain = "UNCERTAIN"

	// Verdict used when the pipeline itself fails before producing a
	// model judgement. Deliberately lowercase so the internal fallbacks
	// are distinguishable from a genuine UNCERTAIN verdict.
	metFallback = "uncertain"
)

// EvaluationRequest is a single compliance question, optionally tagged
// with the questionnaire section it belongs to.
type EvaluationRequest struct {
	Question string `json:"question"`
	Section  string `json:"section,omitempty"`
}

// EvaluationResult is the verdict for one question.
type EvaluationResult struct {
	Question string   `json:"question"`
	Met      string   `json:"met"`
	Evidence Evidence `json:"evidence"`
}

// Evidence carries the citations backing a verdict. Sources, Excerpt and
// Reason come from the reasoning model; Chunk, Doc and Page are only set
// by the no-match short-circuit so clients can render a placeholder row.
type Evidence struct {
	Sources []Source `json:"sources,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
	Reason  string   `json:"reason,omitempty"`

	Chunk string `json:"chunk,omitempty"`
	Doc   string `json:"doc,omitempty"`
	Page  *int   `json:"page,omitempty"`
}

// Source identifies a cited location inside a policy document.
type Source struct {
	Doc        string    `json:"doc"`
	Page       FlexValue `json:"page"`
	TotalPages FlexValue `json:"total_pages"`
	DocTitle   string    `json:"doc_title"`
}

// FlexValue is a string that also accepts a JSON number. The reasoning
// model is inconsistent about whether page fields come back as numbers
// or strings, and both must round-trip without a decode failure.
type FlexValue string

func (f *FlexValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexValue(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexValue(n.String())
	return nil
}

// Int returns the numeric value of f, or 0 when it does not parse.
func (f FlexValue) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}
	return n
}
