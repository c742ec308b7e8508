package optimizedcvs

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/credits"
	"cvpilot-backend/internal/shared/server/middleware"
	"cvpilot-backend/internal/shared/server/respond"
)

// Handler exposes CV optimization endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches optimization routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/optimize-cv", h.optimize)
	rg.GET("/optimize-cv/:id", h.get)
}

type optimizeRequest struct {
	JobMatchAnalysisID string `json:"jobMatchAnalysisId"`
}

func (h *Handler) optimize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	req.JobMatchAnalysisID = strings.TrimSpace(req.JobMatchAnalysisID)
	if req.JobMatchAnalysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobMatchAnalysisId is required", nil)
		return
	}

	o, reused, err := h.Svc.Optimize(c.Request.Context(), userID, req.JobMatchAnalysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSourceNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job match analysis not found", nil)
		case errors.Is(err, ErrSourceNotCompleted):
			respond.Error(c, http.StatusBadRequest, "precondition_failed", "job match analysis must be completed first", nil)
		case errors.Is(err, credits.ErrInsufficientCredits):
			respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "insufficient credits, 2 credits required for CV optimization", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create optimization", nil)
		}
		return
	}

	if reused {
		respond.JSON(c, http.StatusOK, gin.H{
			"success":       true,
			"optimizedCvId": o.ID,
			"message":       "CV already optimized for this job",
		})
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"success":       true,
		"optimizedCvId": o.ID,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "optimized cv id is required", nil)
		return
	}

	o, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "optimized cv not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch optimized cv", nil)
		}
		return
	}

	payload := gin.H{
		"id":                 o.ID,
		"jobMatchAnalysisId": o.JobMatchID,
		"jobTitle":           o.JobTitle,
		"companyName":        o.CompanyName,
		"matchScore":         o.MatchScore,
		"sourceFileName":     o.SourceFileName,
		"status":             o.Status,
		"createdAt":          o.CreatedAt,
		"updatedAt":          o.UpdatedAt,
	}
	if o.Status == StatusCompleted {
		payload["optimizedContent"] = o.OptimizedContent
		payload["optimizationNotes"] = o.OptimizationNotes
	}

	respond.JSON(c, http.StatusOK, payload)
}
