package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"readily-hq/auditor/pkg/audit"
)

// indexFallback is served when no template file is available.
const indexFallback = "<h1>Readily Auditor Backend Running</h1>"

// batchRequest wraps the question list for /batch_evaluate.
type batchRequest struct {
	Questions []audit.EvaluationRequest `json:"questions"`
}

// healthResponse reports service liveness and index population.
type healthResponse struct {
	Status          string `json:"status"`
	PoliciesIndexed int64  `json:"policies_indexed"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if s.templateDir != "" {
		page, err := os.ReadFile(filepath.Join(s.templateDir, "index.html"))
		if err == nil {
			_, _ = w.Write(page)
			return
		}
	}
	_, _ = io.WriteString(w, indexFallback)
}

// handleHealth reports liveness plus the indexed document count. A
// count failure degrades to zero rather than failing the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.counter.Count(r.Context())
	if err != nil {
		s.logger.Warn("health count failed", "error", err)
		count = 0
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", PoliciesIndexed: count})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req audit.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result := s.auditor.Evaluate(r.Context(), req)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatchEvaluate(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	results := s.auditor.EvaluateBatch(r.Context(), req.Questions)
	s.writeJSON(w, http.StatusOK, results)
}

// handleUploadQuestionnaire accepts a multipart PDF upload, spools it to
// a temporary file, and returns the extracted questions. The temporary
// file is always removed.
func (s *Server) handleUploadQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("missing upload: %v", err))
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "questionnaire-*.pdf")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("saving upload: %v", err))
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("saving upload: %v", err))
		return
	}
	if err := tmp.Close(); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("saving upload: %v", err))
		return
	}

	s.logger.Info("processing questionnaire upload",
		"filename", header.Filename,
		"size", header.Size)

	questions, err := s.questionnaire.ExtractFromFile(r.Context(), tmpPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, questions)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
