package jobmatches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cvpilot-backend/internal/credits"
	local "cvpilot-backend/internal/shared/storage/object/local"
)

const validMatchJSON = `{
  "match_score": 74,
  "missing_skills": ["Kubernetes"],
  "existing_strengths": ["Go", "Postgres"],
  "recommendations": ["Add container orchestration experience"],
  "keyword_analysis": {
    "required_keywords": ["go", "kubernetes"],
    "cv_keywords": ["go", "postgres"],
    "matched": ["go"],
    "missing": ["kubernetes"]
  },
  "detailed_feedback": "Strong backend fit, weak on infra."
}`

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	_ = ctx
	_ = data
	return s.text, s.err
}

type stubGenerator struct {
	jsonReply string
	err       error
}

func (s *stubGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	return "", s.err
}

func (s *stubGenerator) CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	_ = ctx
	_ = system
	_ = user
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.jsonReply), nil
}

func TestProcessCompletesAndDebits(t *testing.T) {
	repo := NewMemoryRepo()
	creditsSvc := credits.NewService(3)
	store := local.New(t.TempDir())
	svc := &Service{
		Repo:      repo,
		Store:     store,
		Extractor: &stubExtractor{text: "cv text"},
		Generator: &stubGenerator{jsonReply: validMatchJSON},
		Credits:   creditsSvc,
	}

	key, _, err := store.Save(context.Background(), "user-1", "cv.pdf", bytes.NewReader([]byte("%PDF-1.4 fake")))
	if err != nil {
		t.Fatalf("save cv: %v", err)
	}
	jm := JobMatch{
		ID:           "match-1",
		UserID:       "user-1",
		CVAnalysisID: "analysis-1",
		JobTitle:     "Backend Engineer",
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), jm); err != nil {
		t.Fatalf("create job match: %v", err)
	}

	svc.process(context.Background(), jm, key)

	got, err := repo.GetByID(context.Background(), jm.ID)
	if err != nil {
		t.Fatalf("get job match: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected status completed, got %q", got.Status)
	}
	if got.MatchScore != 74 {
		t.Fatalf("expected match score 74, got %d", got.MatchScore)
	}
	if got.DetailedFeedback == "" {
		t.Fatalf("expected detailed feedback stored")
	}

	b, err := creditsSvc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.Credits != 2 {
		t.Fatalf("expected 1 credit debited, balance 2, got %d", b.Credits)
	}
}

func TestProcessSchemaMismatchFails(t *testing.T) {
	repo := NewMemoryRepo()
	store := local.New(t.TempDir())
	svc := &Service{
		Repo:      repo,
		Store:     store,
		Extractor: &stubExtractor{text: "cv text"},
		Generator: &stubGenerator{jsonReply: `{"match_score": 74, "detailed_feedback": ""}`},
	}

	key, _, err := store.Save(context.Background(), "user-1", "cv.pdf", bytes.NewReader([]byte("fake")))
	if err != nil {
		t.Fatalf("save cv: %v", err)
	}
	jm := JobMatch{ID: "match-1", UserID: "user-1", CVAnalysisID: "analysis-1", Status: StatusPending}
	if err := repo.Create(context.Background(), jm); err != nil {
		t.Fatalf("create job match: %v", err)
	}

	svc.process(context.Background(), jm, key)

	got, err := repo.GetByID(context.Background(), jm.ID)
	if err != nil {
		t.Fatalf("get job match: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("expected status failed on schema mismatch, got %q", got.Status)
	}
}

func TestParseResultValid(t *testing.T) {
	jm, err := ParseResult(json.RawMessage(validMatchJSON))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if jm.MatchScore != 74 {
		t.Fatalf("expected match score 74, got %d", jm.MatchScore)
	}
	if len(jm.KeywordAnalysis.Missing) != 1 {
		t.Fatalf("expected 1 missing keyword, got %d", len(jm.KeywordAnalysis.Missing))
	}
}

func TestParseResultRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{nope`},
		{"score out of range", `{"match_score": 120, "detailed_feedback": "x"}`},
		{"empty feedback", `{"match_score": 50, "detailed_feedback": " "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseResult(json.RawMessage(tc.raw)); !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestParseResultNormalizesNilSlices(t *testing.T) {
	jm, err := ParseResult(json.RawMessage(`{"match_score": 10, "detailed_feedback": "ok"}`))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if jm.MissingSkills == nil || jm.ExistingStrengths == nil || jm.Recommendations == nil {
		t.Fatalf("expected nil slices normalized, got %+v", jm)
	}
	if jm.KeywordAnalysis.RequiredKeywords == nil || jm.KeywordAnalysis.Matched == nil {
		t.Fatalf("expected keyword slices normalized, got %+v", jm.KeywordAnalysis)
	}
}
