package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"readily-hq/auditor/pkg/store"
)

// fakeExtractor serves scripted text per filename; the files on disk are
// just placeholders for directory discovery.
type fakeExtractor struct {
	texts map[string]string
	pages map[string]int
	errs  map[string]error
}

func (f *fakeExtractor) Extract(path string) (string, int, error) {
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return "", 0, err
	}
	pages := f.pages[name]
	if pages == 0 {
		pages = 1
	}
	return f.texts[name], pages, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(&store.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: time.Second,
		WALMode:     true,
	})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedDir creates placeholder files so discovery finds them.
func seedDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const metadataJSON = `{"title": "Extracted Title", "summary": "Extracted summary."}`

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes discovered documents", func(t *testing.T) {
		dir := seedDir(t, "GA.7110 Street Medicine.pdf", filepath.Join("sub", "HO.100 Hospice.pdf"), "notes.txt")
		st := newTestStore(t)
		gen := &fakeGenerator{responses: []string{metadataJSON}}
		ext := &fakeExtractor{
			texts: map[string]string{
				"GA.7110 Street Medicine.pdf": "\n--- Page 1 ---\nStreet medicine services.",
				"HO.100 Hospice.pdf":          "\n--- Page 1 ---\nHospice policy.\n--- Page 2 ---\nMore.",
			},
			pages: map[string]int{"HO.100 Hospice.pdf": 2},
		}

		p := New(Config{PoliciesDir: dir, Concurrency: 4, FastModel: "fast"}, st, gen, ext, nil)
		if err := p.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		count, err := st.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 2 {
			t.Fatalf("Count() = %d, want 2 (txt file must be ignored)", count)
		}

		docs, err := st.Search(ctx, "hospice", 2)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("len(docs) = %d, want 1", len(docs))
		}
		doc := docs[0]
		if doc.FileID != "HO.100 Hospice.pdf" {
			t.Errorf("FileID = %q", doc.FileID)
		}
		if doc.PolicyNumber != "HO.100" {
			t.Errorf("PolicyNumber = %q, want %q", doc.PolicyNumber, "HO.100")
		}
		if doc.Title != "Extracted Title" {
			t.Errorf("Title = %q", doc.Title)
		}
		if doc.TotalPages != 2 {
			t.Errorf("TotalPages = %d, want 2", doc.TotalPages)
		}
		if !strings.Contains(doc.FullText, "--- Page 2 ---") {
			t.Errorf("FullText missing page marker: %q", doc.FullText)
		}
	})

	t.Run("populated store short circuits", func(t *testing.T) {
		dir := seedDir(t, "GA.7110 Street Medicine.pdf")
		st := newTestStore(t)
		if err := st.Insert(ctx, &store.PolicyDocument{FileID: "existing.pdf", FullText: "existing"}); err != nil {
			t.Fatal(err)
		}

		gen := &fakeGenerator{responses: []string{metadataJSON}}
		ext := &fakeExtractor{texts: map[string]string{"GA.7110 Street Medicine.pdf": "text"}}

		p := New(Config{PoliciesDir: dir, FastModel: "fast"}, st, gen, ext, nil)
		if err := p.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if gen.callCount() != 0 {
			t.Errorf("generator called %d times on populated store, want 0", gen.callCount())
		}
		count, _ := st.Count(ctx)
		if count != 1 {
			t.Errorf("Count() = %d, want 1 (no re-ingestion)", count)
		}
	})

	t.Run("empty text skipped", func(t *testing.T) {
		dir := seedDir(t, "scanned.pdf", "GA.7110 Real.pdf")
		st := newTestStore(t)
		gen := &fakeGenerator{responses: []string{metadataJSON}}
		ext := &fakeExtractor{texts: map[string]string{
			"scanned.pdf":      "\n--- Page 1 ---\n   \n--- Page 2 ---\n\t",
			"GA.7110 Real.pdf": "\n--- Page 1 ---\nActual policy text.",
		}}

		p := New(Config{PoliciesDir: dir, FastModel: "fast"}, st, gen, ext, nil)
		if err := p.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		count, _ := st.Count(ctx)
		if count != 1 {
			t.Errorf("Count() = %d, want 1 (whitespace-only document skipped)", count)
		}
	})

	t.Run("unreadable file skipped", func(t *testing.T) {
		dir := seedDir(t, "broken.pdf", "GA.7110 Real.pdf")
		st := newTestStore(t)
		gen := &fakeGenerator{responses: []string{metadataJSON}}
		ext := &fakeExtractor{
			texts: map[string]string{"GA.7110 Real.pdf": "policy text"},
			errs:  map[string]error{"broken.pdf": errors.New("malformed xref")},
		}

		p := New(Config{PoliciesDir: dir, FastModel: "fast"}, st, gen, ext, nil)
		if err := p.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		count, _ := st.Count(ctx)
		if count != 1 {
			t.Errorf("Count() = %d, want 1 (unreadable document skipped)", count)
		}
	})

	t.Run("empty directory is a no-op", func(t *testing.T) {
		st := newTestStore(t)
		gen := &fakeGenerator{}
		p := New(Config{PoliciesDir: t.TempDir(), FastModel: "fast"}, st, gen, &fakeExtractor{}, nil)
		if err := p.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		count, _ := st.Count(ctx)
		if count != 0 {
			t.Errorf("Count() = %d, want 0", count)
		}
	})
}

func TestPolicyNumber(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"GA.7110 Street Medicine.pdf", "GA.7110"},
		{"CL.200 Claims Payment Policy.pdf", "CL.200"},
		{"NoSpaces.pdf", "NoSpaces.pdf"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := policyNumber(tt.filename); got != tt.want {
				t.Errorf("policyNumber(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
