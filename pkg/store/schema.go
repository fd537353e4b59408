package store

// Schema creates the FTS5 virtual table for policy search.
//
// file_id and total_pages are carried as UNINDEXED columns: they are
// needed in results but must not participate in term matching. The porter
// tokenizer stems query terms against title, summary, policy_number and
// full_text.
const Schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS policies_fts USING fts5(
	file_id UNINDEXED,
	policy_number,
	title,
	summary,
	total_pages UNINDEXED,
	full_text,
	tokenize='porter'
);
`

const (
	insertDocument = `
INSERT INTO policies_fts (file_id, policy_number, title, summary, total_pages, full_text)
VALUES (?, ?, ?, ?, ?, ?)`

	countDocuments = `SELECT count(*) FROM policies_fts`

	searchDocuments = `
SELECT file_id, policy_number, title, summary, total_pages, full_text
FROM policies_fts
WHERE policies_fts MATCH ?
ORDER BY rank
LIMIT ?`

	// optimizeIndex merges the FTS index's incremental b-trees into one;
	// cheap to run and keeps query latency flat as the store grows.
	optimizeIndex = `INSERT INTO policies_fts(policies_fts) VALUES('optimize')`
)
