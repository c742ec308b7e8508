package coverletters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvpilot-backend/internal/credits"
	"cvpilot-backend/internal/llm"
	"cvpilot-backend/internal/shared/reqid"
	"cvpilot-backend/internal/shared/storage/object"
	"cvpilot-backend/internal/shared/telemetry"
)

const letterCost = 1

// SourceAnalysis is the view of a CV analysis the generator needs.
type SourceAnalysis struct {
	ID         string
	UserID     string
	FileName   string
	StorageKey string
	Status     string
}

// AnalysisSource looks up CV analyses owned by another package.
type AnalysisSource interface {
	Lookup(ctx context.Context, analysisID string) (SourceAnalysis, error)
}

// GenerateInput carries a validated cover letter request.
type GenerateInput struct {
	CVAnalysisID   string
	JobTitle       string
	CompanyName    string
	JobDescription string
	Language       string
}

// Service contains business logic for cover letter generation.
type Service struct {
	Repo      Repo
	Source    AnalysisSource
	Store     object.ObjectStore
	Extractor llm.Extractor
	Generator llm.Generator
	Credits   *credits.Service
}

// Generate records a pending cover letter and kicks off asynchronous
// generation. The source analysis must exist, belong to the caller and be
// completed.
func (s *Service) Generate(ctx context.Context, userID string, in GenerateInput) (CoverLetter, error) {
	src, err := s.Source.Lookup(ctx, in.CVAnalysisID)
	if err != nil {
		return CoverLetter{}, err
	}
	if src.UserID != userID {
		return CoverLetter{}, ErrSourceNotFound
	}
	if src.Status != "completed" {
		return CoverLetter{}, ErrSourceNotCompleted
	}

	cl := CoverLetter{
		ID:             uuid.NewString(),
		UserID:         userID,
		CVAnalysisID:   in.CVAnalysisID,
		JobTitle:       in.JobTitle,
		CompanyName:    in.CompanyName,
		JobDescription: in.JobDescription,
		Language:       in.Language,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, cl); err != nil {
		return CoverLetter{}, err
	}

	go s.process(reqid.Background(ctx), cl, src.StorageKey)

	return cl, nil
}

// Detail is a cover letter joined with metadata about its source analysis.
type Detail struct {
	CoverLetter
	SourceFileName string
}

// Get returns a cover letter by ID scoped to its owner, joined with the
// source analysis file name when the source still exists.
func (s *Service) Get(ctx context.Context, userID, id string) (Detail, error) {
	cl, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if cl.UserID != userID {
		return Detail{}, ErrNotFound
	}
	d := Detail{CoverLetter: cl}
	if src, err := s.Source.Lookup(ctx, cl.CVAnalysisID); err == nil {
		d.SourceFileName = src.FileName
	}
	return d, nil
}

func (s *Service) process(ctx context.Context, cl CoverLetter, storageKey string) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, cl, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.Repo.UpdateStatus(ctx, cl.ID, StatusProcessing); err != nil {
		s.fail(ctx, cl, fmt.Errorf("set processing: %w", err))
		return
	}
	telemetry.Info("coverletter.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           cl.UserID,
		"cover_letter_id":   cl.ID,
		"status":            StatusProcessing,
		"status_transition": "pending->processing",
	})

	if s.Store == nil || s.Extractor == nil || s.Generator == nil {
		s.fail(ctx, cl, errors.New("missing pipeline dependencies"))
		return
	}

	body, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		s.fail(ctx, cl, fmt.Errorf("open stored cv key=%s: %w", storageKey, err))
		return
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		s.fail(ctx, cl, fmt.Errorf("read stored cv key=%s: %w", storageKey, err))
		return
	}

	cvText, err := s.Extractor.Extract(ctx, raw)
	if err != nil {
		s.fail(ctx, cl, fmt.Errorf("extract cv text: %w", err))
		return
	}

	prompt := llm.CoverLetterPrompt(cl.Language, cl.JobTitle, cl.CompanyName, cl.JobDescription, cvText)
	letter, err := s.Generator.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		s.fail(ctx, cl, fmt.Errorf("llm generate: %w", err))
		return
	}
	if strings.TrimSpace(letter) == "" {
		s.fail(ctx, cl, errors.New("llm returned empty letter"))
		return
	}

	if err := s.Repo.SaveLetter(ctx, cl.ID, letter); err != nil {
		s.fail(ctx, cl, fmt.Errorf("save letter: %w", err))
		return
	}
	if err := s.Repo.UpdateStatus(ctx, cl.ID, StatusCompleted); err != nil {
		s.fail(ctx, cl, fmt.Errorf("set completed: %w", err))
		return
	}
	telemetry.Info("coverletter.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           cl.UserID,
		"cover_letter_id":   cl.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
	})

	if s.Credits != nil {
		if _, err := s.Credits.Debit(ctx, cl.UserID, letterCost); err != nil {
			telemetry.Warn("coverletter.debit_failed", map[string]any{
				"request_id":      reqid.FromContext(ctx),
				"user_id":         cl.UserID,
				"cover_letter_id": cl.ID,
				"error":           err.Error(),
			})
		}
	}
}

func (s *Service) fail(ctx context.Context, cl CoverLetter, cause error) {
	telemetry.Error("coverletter.failed", map[string]any{
		"request_id":      reqid.FromContext(ctx),
		"user_id":         cl.UserID,
		"cover_letter_id": cl.ID,
		"error":           cause.Error(),
	})
	if err := s.Repo.UpdateStatus(ctx, cl.ID, StatusFailed); err != nil {
		telemetry.Error("coverletter.fail_status_update_failed", map[string]any{
			"request_id":      reqid.FromContext(ctx),
			"cover_letter_id": cl.ID,
			"error":           err.Error(),
		})
	}
}
