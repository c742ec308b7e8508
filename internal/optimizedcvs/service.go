package optimizedcvs

import (
	"context"
	"encoding/json"
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

const optimizeCost = 2

// SourceJobMatch is the view of a completed job match the optimizer needs,
// including the storage key of the original CV.
type SourceJobMatch struct {
	ID                string
	UserID            string
	Status            string
	JobTitle          string
	CompanyName       string
	JobDescription    string
	MatchScore        int
	MissingSkills     []string
	ExistingStrengths []string
	Recommendations   []string
	CVFileName        string
	CVStorageKey      string
}

// JobMatchSource looks up job matches owned by another package.
type JobMatchSource interface {
	Lookup(ctx context.Context, jobMatchID string) (SourceJobMatch, error)
}

// Service contains business logic for CV optimization.
type Service struct {
	Repo      Repo
	Source    JobMatchSource
	Store     object.ObjectStore
	Extractor llm.Extractor
	Generator llm.Generator
	Credits   *credits.Service
}

// Optimize records a pending optimization for a completed job match and kicks
// off asynchronous generation. A job match is optimized at most once: a repeat
// request returns the existing optimization without charging again.
func (s *Service) Optimize(ctx context.Context, userID, jobMatchID string) (OptimizedCV, bool, error) {
	if jobMatchID == "" {
		return OptimizedCV{}, false, errors.New("jobMatchID is required")
	}

	src, err := s.Source.Lookup(ctx, jobMatchID)
	if err != nil {
		return OptimizedCV{}, false, err
	}
	if src.UserID != userID {
		return OptimizedCV{}, false, ErrSourceNotFound
	}
	if src.Status != "completed" {
		return OptimizedCV{}, false, ErrSourceNotCompleted
	}

	if s.Credits != nil {
		ok, err := s.Credits.HasAtLeast(ctx, userID, optimizeCost)
		if err != nil {
			return OptimizedCV{}, false, err
		}
		if !ok {
			return OptimizedCV{}, false, credits.ErrInsufficientCredits
		}
	}

	if existing, err := s.Repo.GetByJobMatch(ctx, jobMatchID); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return OptimizedCV{}, false, err
	}

	o := OptimizedCV{
		ID:                uuid.NewString(),
		UserID:            userID,
		JobMatchID:        jobMatchID,
		OptimizationNotes: []string{},
		Status:            StatusPending,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, o); err != nil {
		return OptimizedCV{}, false, err
	}

	go s.process(reqid.Background(ctx), o, src)

	return o, false, nil
}

// Detail is an optimized CV joined with metadata about the job match it was
// generated from.
type Detail struct {
	OptimizedCV
	JobTitle       string
	CompanyName    string
	MatchScore     int
	SourceFileName string
}

// Get returns an optimized CV by ID scoped to its owner, joined with the job
// match metadata when the source still exists.
func (s *Service) Get(ctx context.Context, userID, id string) (Detail, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if o.UserID != userID {
		return Detail{}, ErrNotFound
	}
	d := Detail{OptimizedCV: o}
	if src, err := s.Source.Lookup(ctx, o.JobMatchID); err == nil {
		d.JobTitle = src.JobTitle
		d.CompanyName = src.CompanyName
		d.MatchScore = src.MatchScore
		d.SourceFileName = src.CVFileName
	}
	return d, nil
}

type optimizationResult struct {
	OptimizedContent  string   `json:"optimized_content"`
	OptimizationNotes []string `json:"optimization_notes"`
}

func (s *Service) process(ctx context.Context, o OptimizedCV, src SourceJobMatch) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, o, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.Repo.UpdateStatus(ctx, o.ID, StatusProcessing); err != nil {
		s.fail(ctx, o, fmt.Errorf("set processing: %w", err))
		return
	}
	telemetry.Info("optimize.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           o.UserID,
		"optimized_cv_id":   o.ID,
		"job_match_id":      o.JobMatchID,
		"status":            StatusProcessing,
		"status_transition": "pending->processing",
	})

	if s.Store == nil || s.Extractor == nil || s.Generator == nil {
		s.fail(ctx, o, errors.New("missing pipeline dependencies"))
		return
	}

	body, err := s.Store.Open(ctx, src.CVStorageKey)
	if err != nil {
		s.fail(ctx, o, fmt.Errorf("open stored cv key=%s: %w", src.CVStorageKey, err))
		return
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		s.fail(ctx, o, fmt.Errorf("read stored cv key=%s: %w", src.CVStorageKey, err))
		return
	}

	cvText, err := s.Extractor.Extract(ctx, raw)
	if err != nil {
		s.fail(ctx, o, fmt.Errorf("extract cv text: %w", err))
		return
	}

	prompt := llm.OptimizePrompt(llm.OptimizeInput{
		JobTitle:          src.JobTitle,
		CompanyName:       src.CompanyName,
		JobDescription:    src.JobDescription,
		CVText:            cvText,
		MatchScore:        src.MatchScore,
		MissingSkills:     src.MissingSkills,
		ExistingStrengths: src.ExistingStrengths,
		Recommendations:   src.Recommendations,
	})
	reply, err := s.Generator.CompleteJSON(ctx, prompt.System, prompt.User)
	if err != nil {
		s.fail(ctx, o, fmt.Errorf("llm optimize: %w", err))
		return
	}

	var result optimizationResult
	if err := json.Unmarshal(reply, &result); err != nil {
		s.fail(ctx, o, fmt.Errorf("%w: %v", ErrSchemaMismatch, err))
		return
	}
	if strings.TrimSpace(result.OptimizedContent) == "" {
		s.fail(ctx, o, fmt.Errorf("%w: optimized_content is empty", ErrSchemaMismatch))
		return
	}
	if result.OptimizationNotes == nil {
		result.OptimizationNotes = []string{}
	}

	if err := s.Repo.SaveResult(ctx, o.ID, result.OptimizedContent, result.OptimizationNotes); err != nil {
		s.fail(ctx, o, fmt.Errorf("save result: %w", err))
		return
	}
	if err := s.Repo.UpdateStatus(ctx, o.ID, StatusCompleted); err != nil {
		s.fail(ctx, o, fmt.Errorf("set completed: %w", err))
		return
	}
	telemetry.Info("optimize.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           o.UserID,
		"optimized_cv_id":   o.ID,
		"job_match_id":      o.JobMatchID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
	})

	if s.Credits != nil {
		if _, err := s.Credits.Debit(ctx, o.UserID, optimizeCost); err != nil {
			telemetry.Warn("optimize.debit_failed", map[string]any{
				"request_id":      reqid.FromContext(ctx),
				"user_id":         o.UserID,
				"optimized_cv_id": o.ID,
				"error":           err.Error(),
			})
		}
	}
}

func (s *Service) fail(ctx context.Context, o OptimizedCV, cause error) {
	telemetry.Error("optimize.failed", map[string]any{
		"request_id":      reqid.FromContext(ctx),
		"user_id":         o.UserID,
		"optimized_cv_id": o.ID,
		"error":           cause.Error(),
	})
	if err := s.Repo.UpdateStatus(ctx, o.ID, StatusFailed); err != nil {
		telemetry.Error("optimize.fail_status_update_failed", map[string]any{
			"request_id":      reqid.FromContext(ctx),
			"optimized_cv_id": o.ID,
			"error":           err.Error(),
		})
	}
}
