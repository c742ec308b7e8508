package analyses

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

const analysisCost = 1

// Service contains business logic for CV analyses.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Extractor llm.Extractor
	Generator llm.Generator
	Credits   *credits.Service
}

// CreatePending records a freshly uploaded CV in pending state.
func (s *Service) CreatePending(ctx context.Context, userID, fileName, storageKey string, fileSize int64) (Analysis, error) {
	if userID == "" || fileName == "" || storageKey == "" {
		return Analysis{}, errors.New("userID, fileName and storageKey are required")
	}
	a := Analysis{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		StorageKey: storageKey,
		FileSize:   fileSize,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// Start kicks off asynchronous analysis of a previously uploaded CV. The
// record must exist and belong to the caller.
func (s *Service) Start(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, errors.New("analysisID is required")
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}

	go s.process(reqid.Background(ctx), a.ID, a.UserID, a.StorageKey)

	return a, nil
}

// Get returns an analysis by ID scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// GetResult returns the stored result for a completed analysis.
func (s *Service) GetResult(ctx context.Context, analysisID string) (Result, error) {
	return s.Repo.GetResult(ctx, analysisID)
}

// List returns the caller's analyses newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// process runs the full pipeline on a background context. The record id is
// passed in directly so a failure can always be written back.
func (s *Service) process(ctx context.Context, analysisID, userID, storageKey string) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, analysisID, userID, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusProcessing); err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("set processing: %w", err))
		return
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           userID,
		"analysis_id":       analysisID,
		"status":            StatusProcessing,
		"status_transition": "pending->processing",
	})

	if s.Store == nil || s.Extractor == nil || s.Generator == nil {
		s.fail(ctx, analysisID, userID, errors.New("missing pipeline dependencies"))
		return
	}

	body, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("open stored cv key=%s: %w", storageKey, err))
		return
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("read stored cv key=%s: %w", storageKey, err))
		return
	}

	cvText, err := s.Extractor.Extract(ctx, raw)
	if err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("extract cv text: %w", err))
		return
	}

	prompt := llm.AnalyzePrompt(cvText)
	reply, err := s.Generator.CompleteJSON(ctx, prompt.System, prompt.User)
	if err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("llm analyze: %w", err))
		return
	}

	result, err := ParseResult(reply)
	if err != nil {
		s.fail(ctx, analysisID, userID, err)
		return
	}
	result.ID = uuid.NewString()
	result.AnalysisID = analysisID

	if err := s.Repo.SaveResult(ctx, result); err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("save result: %w", err))
		return
	}
	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusCompleted); err != nil {
		s.fail(ctx, analysisID, userID, fmt.Errorf("set completed: %w", err))
		return
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        reqid.FromContext(ctx),
		"user_id":           userID,
		"analysis_id":       analysisID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"overall_score":     result.OverallScore,
	})

	// Debit last: a completed result is never rolled back over the ledger.
	if s.Credits != nil {
		if _, err := s.Credits.Debit(ctx, userID, analysisCost); err != nil {
			telemetry.Warn("analysis.debit_failed", map[string]any{
				"request_id":  reqid.FromContext(ctx),
				"user_id":     userID,
				"analysis_id": analysisID,
				"error":       err.Error(),
			})
		}
	}
}

func (s *Service) fail(ctx context.Context, analysisID, userID string, cause error) {
	telemetry.Error("analysis.failed", map[string]any{
		"request_id":  reqid.FromContext(ctx),
		"user_id":     userID,
		"analysis_id": analysisID,
		"error":       cause.Error(),
	})
	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusFailed); err != nil {
		telemetry.Error("analysis.fail_status_update_failed", map[string]any{
			"request_id":  reqid.FromContext(ctx),
			"analysis_id": analysisID,
			"error":       err.Error(),
		})
	}
}
