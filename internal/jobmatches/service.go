package jobmatches

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"cvpilot-backend/internal/credits"
	"cvpilot-backend/internal/llm"
	"cvpilot-backend/internal/shared/reqid"
	"cvpilot-backend/internal/shared/storage/object"
	"cvpilot-backend/internal/shared/telemetry"
)

const matchCost = 1

// SourceAnalysis is the view of a CV analysis the matcher needs.
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

// OptimizationRef reports the optimized CV linked to a job match, if any.
type OptimizationRef interface {
	OptimizedCVID(ctx context.Context, jobMatchID string) (string, bool, error)
}

// AnalyzeInput carries a validated job match request.
type AnalyzeInput struct {
	CVAnalysisID   string
	JobTitle       string
	CompanyName    string
	JobDescription string
}

// Service contains business logic for job match analyses.
type Service struct {
	Repo          Repo
	Source        AnalysisSource
	Optimizations OptimizationRef
	Store         object.ObjectStore
	Extractor     llm.Extractor
	Generator     llm.Generator
	Credits       *credits.Service
}

// Analyze records a pending job match and kicks off asynchronous analysis.
// The caller must own a completed source analysis and hold at least one
// credit; no record is created otherwise.
func (s *Service) Analyze(ctx context.Context, userID string, in AnalyzeInput) (JobMatch, error) {
	src, err := s.Source.Lookup(ctx, in.CVAnalysisID)
	if err != nil {
		return JobMatch{}, err
	}
	if src.UserID != userID {
		return JobMatch{}, ErrSourceNotFound
	}
	if src.Status != "completed" {
		return JobMatch{}, ErrSourceNotCompleted
	}

	if s.Credits != nil {
		ok, err := s.Credits.HasAtLeast(ctx, userID, matchCost)
		if err != nil {
			return JobMatch{}, err
		}
		if !ok {
			return JobMatch{}, credits.ErrInsufficientCredits
		}
	}

	jm := JobMatch{
		ID:             uuid.NewString(),
		UserID:         userID,
		CVAnalysisID:   in.CVAnalysisID,
		JobTitle:       in.JobTitle,
		CompanyName:    in.CompanyName,
		JobDescription: in.JobDescription,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, jm); err != nil {
		return JobMatch{}, err
	}

	go s.process(reqid.Background(ctx), jm, src.StorageKey)

	return jm, nil
}

// Detail is a job match joined with the source analysis file name and the
// optimized CV generated from it, if one exists.
type Detail struct {
	JobMatch
	SourceFileName string
	OptimizedCVID  string
}

// Get returns a job match by ID scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, id string) (Detail, error) {
	jm, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if jm.UserID != userID {
		return Detail{}, ErrNotFound
	}
	d := Detail{JobMatch: jm}
	if src, err := s.Source.Lookup(ctx, jm.CVAnalysisID); err == nil {
		d.SourceFileName = src.FileName
	}
	if s.Optimizations != nil {
		if optID, ok, err := s.Optimizations.OptimizedCVID(ctx, jm.ID); err == nil && ok {
			d.OptimizedCVID = optID
		}
	}
	return d, nil
}

func (s *Service) process(ctx context.Context, jm JobMatch, storageKey string) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, jm, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.Repo.UpdateStatus(ctx, jm.ID, StatusProcessing); err != nil {
		s.fail(ctx, jm, fmt.Errorf("set processing: %w", err))
		return
	}
	telemetry.Info("jobmatch.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           jm.UserID,
		"job_match_id":      jm.ID,
		"status":            StatusProcessing,
		"status_transition": "pending->processing",
	})

	if s.Store == nil || s.Extractor == nil || s.Generator == nil {
		s.fail(ctx, jm, errors.New("missing pipeline dependencies"))
		return
	}

	body, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		s.fail(ctx, jm, fmt.Errorf("open stored cv key=%s: %w", storageKey, err))
		return
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		s.fail(ctx, jm, fmt.Errorf("read stored cv key=%s: %w", storageKey, err))
		return
	}

	cvText, err := s.Extractor.Extract(ctx, raw)
	if err != nil {
		s.fail(ctx, jm, fmt.Errorf("extract cv text: %w", err))
		return
	}

	prompt := llm.JobMatchPrompt(jm.JobTitle, jm.CompanyName, jm.JobDescription, cvText)
	reply, err := s.Generator.CompleteJSON(ctx, prompt.System, prompt.User)
	if err != nil {
		s.fail(ctx, jm, fmt.Errorf("llm analyze: %w", err))
		return
	}

	result, err := ParseResult(reply)
	if err != nil {
		s.fail(ctx, jm, err)
		return
	}
	result.ID = jm.ID

	if err := s.Repo.SaveResult(ctx, result); err != nil {
		s.fail(ctx, jm, fmt.Errorf("save result: %w", err))
		return
	}
	if err := s.Repo.UpdateStatus(ctx, jm.ID, StatusCompleted); err != nil {
		s.fail(ctx, jm, fmt.Errorf("set completed: %w", err))
		return
	}
	telemetry.Info("jobmatch.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           jm.UserID,
		"job_match_id":      jm.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"match_score":       result.MatchScore,
	})

	if s.Credits != nil {
		if _, err := s.Credits.Debit(ctx, jm.UserID, matchCost); err != nil {
			telemetry.Warn("jobmatch.debit_failed", map[string]any{
				"request_id":   reqid.FromContext(ctx),
				"user_id":      jm.UserID,
				"job_match_id": jm.ID,
				"error":        err.Error(),
			})
		}
	}
}

func (s *Service) fail(ctx context.Context, jm JobMatch, cause error) {
	telemetry.Error("jobmatch.failed", map[string]any{
		"request_id":   reqid.FromContext(ctx),
		"user_id":      jm.UserID,
		"job_match_id": jm.ID,
		"error":        cause.Error(),
	})
	if err := s.Repo.UpdateStatus(ctx, jm.ID, StatusFailed); err != nil {
		telemetry.Error("jobmatch.fail_status_update_failed", map[string]any{
			"request_id":   reqid.FromContext(ctx),
			"job_match_id": jm.ID,
			"error":        err.Error(),
		})
	}
}
