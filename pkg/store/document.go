package store

// PolicyDocument is one ingested policy PDF.
type PolicyDocument struct {
	// FileID is the source filename; unique within the store and never
	// re-derived after ingestion.
	FileID string `json:"file_id"`

	// PolicyNumber is the leading token of the filename (split on the
	// first space). Best-effort; may collide or be empty.
	PolicyNumber string `json:"policy_number"`

	// Title is the official policy title extracted by the model, falling
	// back to the filename when extraction fails.
	Title string `json:"title"`

	// Summary is a one-sentence model-produced summary, or a fixed
	// placeholder when extraction fails.
	Summary string `json:"summary"`

	// TotalPages is the page count of the source PDF.
	TotalPages int `json:"total_pages"`

	// FullText is the concatenated page text with "--- Page N ---"
	// markers (1-indexed) so verdicts can cite page numbers.
	FullText string `json:"full_text"`
}
