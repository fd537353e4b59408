package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"readily-hq/auditor/pkg/audit"
	"readily-hq/auditor/pkg/config"
	"readily-hq/auditor/pkg/genai"
	"readily-hq/auditor/pkg/store"
)

type stubGenerator struct {
	respond func(req *genai.GenerateRequest) (string, error)
}

func (s *stubGenerator) GenerateContent(ctx context.Context, req *genai.GenerateRequest) (string, error) {
	return s.respond(req)
}

type stubSearcher struct {
	docs []store.PolicyDocument
}

func (s *stubSearcher) Search(ctx context.Context, term string, limit int) ([]store.PolicyDocument, error) {
	return s.docs, nil
}

type stubCounter struct {
	count int64
	err   error
}

func (s *stubCounter) Count(ctx context.Context) (int64, error) {
	return s.count, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandler wires a server around a searcher with no matching
// documents and a router that returns fixed terms, so evaluations land on
// the no-match short-circuit unless the test overrides the generator.
func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.Counter == nil {
		opts.Counter = &stubCounter{count: 42}
	}
	if opts.Auditor == nil {
		gen := &stubGenerator{respond: func(req *genai.GenerateRequest) (string, error) {
			return `["a", "b", "c"]`, nil
		}}
		opts.Auditor = audit.NewService(audit.Config{FastModel: "fast", ReasoningModel: "reasoning"},
			&stubSearcher{}, gen, nil, quietLogger())
	}
	return New(opts).Handler()
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("reports indexed count", func(t *testing.T) {
		handler := newTestHandler(t, Options{Counter: &stubCounter{count: 7}})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp struct {
			Status          string `json:"status"`
			PoliciesIndexed int64  `json:"policies_indexed"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Status != "ok" {
			t.Errorf("status = %q", resp.Status)
		}
		if resp.PoliciesIndexed != 7 {
			t.Errorf("policies_indexed = %d, want 7", resp.PoliciesIndexed)
		}
	})

	t.Run("count failure degrades to zero", func(t *testing.T) {
		handler := newTestHandler(t, Options{Counter: &stubCounter{err: errors.New("db closed")}})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 despite count failure", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"policies_indexed":0`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestIndexEndpoint(t *testing.T) {
	t.Run("inline fallback without template", func(t *testing.T) {
		handler := newTestHandler(t, Options{TemplateDir: ""})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Readily Auditor") {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestEvaluateEndpoint(t *testing.T) {
	t.Run("no match placeholder", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		body := strings.NewReader(`{"question": "Is hospice covered?", "section": "Benefits"}`)
		req := httptest.NewRequest(http.MethodPost, "/evaluate", body)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
		}
		var result audit.EvaluationResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatal(err)
		}
		if result.Met != "uncertain" {
			t.Errorf("met = %q, want uncertain", result.Met)
		}
		if result.Question != "Is hospice covered?" {
			t.Errorf("question = %q", result.Question)
		}
		if result.Evidence.Chunk != "No relevant policy documents found." {
			t.Errorf("chunk = %q", result.Evidence.Chunk)
		}
	})

	t.Run("process_question is an alias", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		body := strings.NewReader(`{"question": "Q?"}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process_question", body))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("missing question rejected", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		body := strings.NewReader(`{"section": "Benefits"}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/evaluate", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader("{")))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("get method rejected", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/evaluate", nil))

		if rec.Code != http.StatusMethodNotAllowed && rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want method rejection", rec.Code)
		}
	})
}

func TestBatchEvaluateEndpoint(t *testing.T) {
	handler := newTestHandler(t, Options{})

	body := strings.NewReader(`{"questions": [
		{"question": "First?"},
		{"question": "Second?"},
		{"question": "Third?"}
	]}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/batch_evaluate", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var results []audit.EvaluationResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	want := []string{"First?", "Second?", "Third?"}
	for i, result := range results {
		if result.Question != want[i] {
			t.Errorf("results[%d].Question = %q, want %q (order must be preserved)", i, result.Question, want[i])
		}
	}
}

func TestUploadQuestionnaireEndpoint(t *testing.T) {
	t.Run("missing file field rejected", func(t *testing.T) {
		handler := newTestHandler(t, Options{})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("unrelated", "x")
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/upload_questionnaire", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		handler := newTestHandler(t, Options{
			Config: config.ServerConfig{MaxUploadBytes: 128},
		})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("file", "big.pdf")
		_, _ = fw.Write(bytes.Repeat([]byte("x"), 4096))
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/upload_questionnaire", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for oversized body", rec.Code)
		}
	})
}

func TestRequestIDPropagation(t *testing.T) {
	handler := newTestHandler(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want the client value echoed", got)
	}
}
