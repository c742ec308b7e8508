package jobmatches

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/credits"
	"cvpilot-backend/internal/shared/server/middleware"
	"cvpilot-backend/internal/shared/server/respond"
)

const maxJobDescriptionLen = 10000

// Handler exposes job match endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job match routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job-match/analyze", h.analyze)
	rg.GET("/job-match/:id", h.get)
}

type analyzeRequest struct {
	CVAnalysisID   string `json:"cvAnalysisId"`
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	req.CVAnalysisID = strings.TrimSpace(req.CVAnalysisID)
	req.JobTitle = strings.TrimSpace(req.JobTitle)

	if req.CVAnalysisID == "" || req.JobTitle == "" || req.JobDescription == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cvAnalysisId, jobTitle and jobDescription are required", nil)
		return
	}
	if utf8.RuneCountInString(req.JobDescription) > maxJobDescriptionLen {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job description too long (max 10000 characters)", nil)
		return
	}

	jm, err := h.Svc.Analyze(c.Request.Context(), userID, AnalyzeInput{
		CVAnalysisID:   req.CVAnalysisID,
		JobTitle:       req.JobTitle,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		JobDescription: req.JobDescription,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSourceNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "cv analysis not found", nil)
		case errors.Is(err, ErrSourceNotCompleted):
			respond.Error(c, http.StatusBadRequest, "precondition_failed", "cv analysis must be completed first", nil)
		case errors.Is(err, credits.ErrInsufficientCredits):
			respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "insufficient credits", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create job match analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"success":    true,
		"jobMatchId": jm.ID,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job match id is required", nil)
		return
	}

	jm, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job match analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job match analysis", nil)
		}
		return
	}

	payload := gin.H{
		"id":             jm.ID,
		"cvAnalysisId":   jm.CVAnalysisID,
		"sourceFileName": jm.SourceFileName,
		"jobTitle":       jm.JobTitle,
		"companyName":    jm.CompanyName,
		"jobDescription": jm.JobDescription,
		"status":         jm.Status,
		"createdAt":      jm.CreatedAt,
		"updatedAt":      jm.UpdatedAt,
	}
	if jm.OptimizedCVID != "" {
		payload["optimizedCvId"] = jm.OptimizedCVID
	}
	if jm.Status == StatusCompleted {
		payload["matchScore"] = jm.MatchScore
		payload["missingSkills"] = jm.MissingSkills
		payload["existingStrengths"] = jm.ExistingStrengths
		payload["recommendations"] = jm.Recommendations
		payload["keywordAnalysis"] = jm.KeywordAnalysis
		payload["detailedFeedback"] = jm.DetailedFeedback
	}

	respond.JSON(c, http.StatusOK, payload)
}
