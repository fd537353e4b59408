package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordDocumentIndexed()
	c.RecordDocumentSkipped("no_text")
	c.RecordIngestDuration(3 * time.Second)
	c.SetPendingDocuments(2)
	c.RecordEvaluation("YES", time.Second)
	c.RecordSearch()
	c.RecordModelRequest("routing", "success")
	c.RecordRateLimitRetry()

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"readily_auditor_documents_indexed_total":        false,
		"readily_auditor_documents_skipped_total":        false,
		"readily_auditor_ingest_duration_seconds":        false,
		"readily_auditor_documents_pending":              false,
		"readily_auditor_evaluations_total":              false,
		"readily_auditor_evaluation_duration_seconds":    false,
		"readily_auditor_searches_total":                 false,
		"readily_auditor_model_requests_total":           false,
		"readily_auditor_model_rate_limit_retries_total": false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	// None of these may panic.
	c.RecordDocumentIndexed()
	c.RecordDocumentSkipped("read_error")
	c.RecordIngestDuration(time.Second)
	c.SetPendingDocuments(1)
	c.RecordEvaluation("NO", time.Second)
	c.RecordSearch()
	c.RecordModelRequest("metadata", "error")
	c.RecordRateLimitRetry()

	if c.Registry() != nil {
		t.Error("Registry() on nil collector should be nil")
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector(nil)
	c.RecordSearch()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "readily_auditor_searches_total 1") {
		t.Errorf("exposition missing counter:\n%s", rec.Body.String())
	}
}
