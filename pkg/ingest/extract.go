package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor extracts page-marked text from a document file.
// The production implementation reads PDFs; tests substitute fakes.
type Extractor interface {
	// Extract returns the concatenated page text, each page prefixed
	// with a "--- Page N ---" marker (1-indexed), and the page count.
	Extract(path string) (text string, pages int, err error)
}

// NewPDFExtractor returns the PDF-backed Extractor.
func NewPDFExtractor() Extractor {
	return &pdfExtractor{}
}

type pdfExtractor struct{}

// Extract implements Extractor.
// The pdf parser panics on some malformed files; the recover converts
// those into per-file errors so one bad PDF cannot take down ingestion.
func (e *pdfExtractor) Extract(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse failure in %q: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	pages = reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			fmt.Fprintf(&sb, "\n--- Page %d ---\n", i)
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page does not invalidate the document;
			// the marker still lets verdicts cite surrounding pages.
			pageText = ""
		}

		fmt.Fprintf(&sb, "\n--- Page %d ---\n%s", i, pageText)
	}

	return sb.String(), pages, nil
}
