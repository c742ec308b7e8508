package optimizedcvs

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

type staticJobMatchSource struct {
	matches map[string]SourceJobMatch
}

func (s staticJobMatchSource) Lookup(ctx context.Context, jobMatchID string) (SourceJobMatch, error) {
	_ = ctx
	src, ok := s.matches[jobMatchID]
	if !ok {
		return SourceJobMatch{}, ErrSourceNotFound
	}
	return src, nil
}

type stubExtractor struct {
	text string
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	_ = ctx
	_ = data
	return s.text, nil
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

func completedJobMatch(userID, storageKey string) SourceJobMatch {
	return SourceJobMatch{
		ID:                "match-1",
		UserID:            userID,
		Status:            "completed",
		JobTitle:          "Backend Engineer",
		CompanyName:       "Acme",
		JobDescription:    "Build APIs in Go.",
		MatchScore:        74,
		MissingSkills:     []string{"Kubernetes"},
		ExistingStrengths: []string{"Go"},
		Recommendations:   []string{"Learn k8s"},
		CVStorageKey:      storageKey,
	}
}

func TestOptimizeRequiresTwoCredits(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:    repo,
		Source:  staticJobMatchSource{matches: map[string]SourceJobMatch{"match-1": completedJobMatch("user-1", "key")}},
		Credits: credits.NewService(1),
	}

	if _, _, err := svc.Optimize(context.Background(), "user-1", "match-1"); !errors.Is(err, credits.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits with 1 credit, got %v", err)
	}
	if _, err := repo.GetByJobMatch(context.Background(), "match-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no record created on credit rejection, got %v", err)
	}
}

func TestOptimizeRejectsIncompleteJobMatch(t *testing.T) {
	src := completedJobMatch("user-1", "key")
	src.Status = "processing"
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:    repo,
		Source:  staticJobMatchSource{matches: map[string]SourceJobMatch{"match-1": src}},
		Credits: credits.NewService(5),
	}

	if _, _, err := svc.Optimize(context.Background(), "user-1", "match-1"); !errors.Is(err, ErrSourceNotCompleted) {
		t.Fatalf("expected ErrSourceNotCompleted, got %v", err)
	}
	if _, err := repo.GetByJobMatch(context.Background(), "match-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no record created, got %v", err)
	}
}

func TestOptimizeForeignJobMatchIsNotFound(t *testing.T) {
	svc := &Service{
		Repo:    NewMemoryRepo(),
		Source:  staticJobMatchSource{matches: map[string]SourceJobMatch{"match-1": completedJobMatch("someone-else", "key")}},
		Credits: credits.NewService(5),
	}

	if _, _, err := svc.Optimize(context.Background(), "user-1", "match-1"); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound for foreign job match, got %v", err)
	}
}

func TestOptimizeReusesExistingWithoutCharging(t *testing.T) {
	repo := NewMemoryRepo()
	creditsSvc := credits.NewService(5)
	svc := &Service{
		Repo:    repo,
		Source:  staticJobMatchSource{matches: map[string]SourceJobMatch{"match-1": completedJobMatch("user-1", "key")}},
		Credits: creditsSvc,
	}

	existing := OptimizedCV{
		ID:                "opt-1",
		UserID:            "user-1",
		JobMatchID:        "match-1",
		OptimizedContent:  "optimized text",
		OptimizationNotes: []string{"note"},
		Status:            StatusCompleted,
		CreatedAt:         time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), existing); err != nil {
		t.Fatalf("create existing optimization: %v", err)
	}

	got, reused, err := svc.Optimize(context.Background(), "user-1", "match-1")
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !reused {
		t.Fatalf("expected existing optimization to be reused")
	}
	if got.ID != existing.ID {
		t.Fatalf("expected existing id %q, got %q", existing.ID, got.ID)
	}

	b, err := creditsSvc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.Credits != 5 {
		t.Fatalf("expected no charge on reuse, balance 5, got %d", b.Credits)
	}
}

func TestProcessCompletesAndDebitsTwo(t *testing.T) {
	repo := NewMemoryRepo()
	creditsSvc := credits.NewService(5)
	store := local.New(t.TempDir())

	key, _, err := store.Save(context.Background(), "user-1", "cv.pdf", bytes.NewReader([]byte("%PDF-1.4 fake")))
	if err != nil {
		t.Fatalf("save cv: %v", err)
	}
	src := completedJobMatch("user-1", key)

	svc := &Service{
		Repo:      repo,
		Source:    staticJobMatchSource{matches: map[string]SourceJobMatch{"match-1": src}},
		Store:     store,
		Extractor: &stubExtractor{text: "cv text"},
		Generator: &stubGenerator{jsonReply: `{"optimized_content": "better cv", "optimization_notes": ["reordered skills"]}`},
		Credits:   creditsSvc,
	}

	o := OptimizedCV{
		ID:                "opt-1",
		UserID:            "user-1",
		JobMatchID:        "match-1",
		OptimizationNotes: []string{},
		Status:            StatusPending,
		CreatedAt:         time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("create optimization: %v", err)
	}

	svc.process(context.Background(), o, src)

	got, err := repo.GetByID(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("get optimization: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected status completed, got %q", got.Status)
	}
	if got.OptimizedContent != "better cv" {
		t.Fatalf("expected optimized content stored, got %q", got.OptimizedContent)
	}
	if len(got.OptimizationNotes) != 1 {
		t.Fatalf("expected 1 optimization note, got %d", len(got.OptimizationNotes))
	}

	b, err := creditsSvc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.Credits != 3 {
		t.Fatalf("expected 2 credits debited, balance 3, got %d", b.Credits)
	}
}

func TestProcessEmptyContentFails(t *testing.T) {
	repo := NewMemoryRepo()
	store := local.New(t.TempDir())

	key, _, err := store.Save(context.Background(), "user-1", "cv.pdf", bytes.NewReader([]byte("fake")))
	if err != nil {
		t.Fatalf("save cv: %v", err)
	}
	src := completedJobMatch("user-1", key)

	svc := &Service{
		Repo:      repo,
		Source:    staticJobMatchSource{matches: map[string]SourceJobMatch{"match-1": src}},
		Store:     store,
		Extractor: &stubExtractor{text: "cv text"},
		Generator: &stubGenerator{jsonReply: `{"optimized_content": "  ", "optimization_notes": []}`},
	}

	o := OptimizedCV{ID: "opt-1", UserID: "user-1", JobMatchID: "match-1", Status: StatusPending}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("create optimization: %v", err)
	}

	svc.process(context.Background(), o, src)

	got, err := repo.GetByID(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("get optimization: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("expected status failed on empty content, got %q", got.Status)
	}
}
