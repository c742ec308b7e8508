package coverletters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/shared/server/middleware"
)

type staticAnalysisSource struct {
	analyses map[string]SourceAnalysis
}

func (s staticAnalysisSource) Lookup(ctx context.Context, analysisID string) (SourceAnalysis, error) {
	_ = ctx
	src, ok := s.analyses[analysisID]
	if !ok {
		return SourceAnalysis{}, ErrSourceNotFound
	}
	return src, nil
}

func setupCoverLetterRouter(t *testing.T, source AnalysisSource) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Source: source}
	handler := NewHandler(svc)

	r := gin.New()
	r.Use(middleware.Auth())
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	return r, repo
}

func countLetters(r *MemoryRepo) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.letters)
}

func postGenerate(t *testing.T, r *gin.Engine, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-cover-letter", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGenerateCoverLetterAccepted(t *testing.T) {
	source := staticAnalysisSource{analyses: map[string]SourceAnalysis{
		"analysis-1": {ID: "analysis-1", UserID: "guest:test-guest", StorageKey: "key", Status: "completed"},
	}}
	r, repo := setupCoverLetterRouter(t, source)

	resp := postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"companyName":    "Acme",
		"jobDescription": "Build APIs in Go.",
		"language":       "en",
	})

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		CoverLetterID string `json:"coverLetterId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.CoverLetterID == "" {
		t.Fatalf("expected coverLetterId, got empty")
	}
	if _, err := repo.GetByID(context.Background(), created.CoverLetterID); err != nil {
		t.Fatalf("expected record persisted: %v", err)
	}
}

func TestGenerateCoverLetterJobDescriptionBoundary(t *testing.T) {
	source := staticAnalysisSource{analyses: map[string]SourceAnalysis{
		"analysis-1": {ID: "analysis-1", UserID: "guest:test-guest", StorageKey: "key", Status: "completed"},
	}}
	r, _ := setupCoverLetterRouter(t, source)

	resp := postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": strings.Repeat("a", maxJobDescriptionLen),
		"language":       "en",
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 at exactly %d chars, got %d", maxJobDescriptionLen, resp.Code)
	}

	resp = postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": strings.Repeat("a", maxJobDescriptionLen+1),
		"language":       "en",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 above %d chars, got %d", maxJobDescriptionLen, resp.Code)
	}

	// The limit counts characters, not bytes; Turkish text is multi-byte.
	resp = postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": strings.Repeat("ğ", maxJobDescriptionLen),
		"language":       "tr",
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for %d multi-byte chars, got %d", maxJobDescriptionLen, resp.Code)
	}
}

func TestGenerateCoverLetterRejectsUnknownLanguage(t *testing.T) {
	source := staticAnalysisSource{analyses: map[string]SourceAnalysis{}}
	r, repo := setupCoverLetterRouter(t, source)

	resp := postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": "jd",
		"language":       "de",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported language, got %d", resp.Code)
	}
	if n := countLetters(repo); n != 0 {
		t.Fatalf("expected no record created on validation failure, got %d", n)
	}
}

func TestGenerateCoverLetterSourceNotCompleted(t *testing.T) {
	source := staticAnalysisSource{analyses: map[string]SourceAnalysis{
		"analysis-1": {ID: "analysis-1", UserID: "guest:test-guest", StorageKey: "key", Status: "processing"},
	}}
	r, repo := setupCoverLetterRouter(t, source)

	resp := postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": "jd",
		"language":       "tr",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete source analysis, got %d", resp.Code)
	}
	if n := countLetters(repo); n != 0 {
		t.Fatalf("expected no record created, got %d", n)
	}
}

func TestGenerateCoverLetterForeignAnalysisIsNotFound(t *testing.T) {
	source := staticAnalysisSource{analyses: map[string]SourceAnalysis{
		"analysis-1": {ID: "analysis-1", UserID: "guest:someone-else", StorageKey: "key", Status: "completed"},
	}}
	r, _ := setupCoverLetterRouter(t, source)

	resp := postGenerate(t, r, map[string]string{
		"cvAnalysisId":   "analysis-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": "jd",
		"language":       "en",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign analysis, got %d", resp.Code)
	}
}

func TestGetCoverLetterHidesLetterUntilCompleted(t *testing.T) {
	source := staticAnalysisSource{analyses: map[string]SourceAnalysis{}}
	r, repo := setupCoverLetterRouter(t, source)

	cl := CoverLetter{
		ID:           "letter-1",
		UserID:       "guest:test-guest",
		CVAnalysisID: "analysis-1",
		JobTitle:     "Backend Engineer",
		Language:     "en",
		Status:       StatusProcessing,
	}
	if err := repo.Create(context.Background(), cl); err != nil {
		t.Fatalf("create cover letter: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cover-letters/letter-1", nil)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := payload["generatedLetter"]; ok {
		t.Fatalf("expected generatedLetter omitted while processing")
	}
	if payload["status"] != StatusProcessing {
		t.Fatalf("expected status processing, got %v", payload["status"])
	}
}
